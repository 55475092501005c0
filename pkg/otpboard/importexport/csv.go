// Package importexport moves accounts in and out as CSV.
//
// The column order is fixed: issuer, account, secret, remark. Import is
// best-effort: every row is tried on its own and the caller gets a count of
// what was committed alongside the reasons the other rows were not.
package importexport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"github.com/mikepea/otpboard/pkg/otpboard/repository"
	"github.com/mikepea/otpboard/pkg/otpboard/totp"
)

// Header is the first line of every export
var Header = []string{"issuer", "account", "secret", "remark"}

// MinFields is how many columns a row needs to be importable. Account and
// remark may be empty; issuer and secret may not.
const MinFields = 3

// Row is one parsed CSV record
type Row struct {
	Line    int
	Issuer  string
	Account string
	Secret  string
	Remark  string
}

// Rejected is a record the parser or importer refused
type Rejected struct {
	Line   int
	Reason string
}

func (r Rejected) String() string {
	return fmt.Sprintf("line %d: %s", r.Line, r.Reason)
}

// ParseResult holds the accepted rows and the refused ones, in input order
type ParseResult struct {
	Rows     []Row
	Rejected []Rejected
}

// Result summarizes an import
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors,omitempty"`
}

// AccountCreator is the part of the account repository an import needs
type AccountCreator interface {
	Create(ctx context.Context, in repository.NewAccount) (*models.Account, error)
}

// Export writes accounts as CSV with a header line
func Export(w io.Writer, accounts []models.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, acc := range accounts {
		if err := cw.Write([]string{acc.Issuer, acc.Name, acc.Secret, acc.Remark}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), Header[0])
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// Parse reads CSV records. The first record is skipped when its first column
// is "issuer" in any case. Malformed records are rejected, not fatal.
func Parse(r io.Reader) (*ParseResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	result := &ParseResult{}
	first := true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			result.Rejected = append(result.Rejected, Rejected{Line: parseErr.StartLine, Reason: parseErr.Err.Error()})
			first = false
			continue
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			if len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], "\ufeff")
			}
			if isHeader(record) {
				continue
			}
		}

		if len(record) < MinFields {
			result.Rejected = append(result.Rejected, Rejected{Line: line, Reason: "expected issuer, account and secret"})
			continue
		}

		row := Row{
			Line:    line,
			Issuer:  field(record, 0),
			Account: field(record, 1),
			Secret:  field(record, 2),
			Remark:  field(record, 3),
		}
		if strings.TrimSpace(row.Issuer) == "" || strings.TrimSpace(row.Secret) == "" {
			result.Rejected = append(result.Rejected, Rejected{Line: line, Reason: "issuer and secret are required"})
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// Import parses r and creates one account per accepted row.
// A failing row is recorded and skipped; it never stops the rows after it.
func Import(ctx context.Context, accounts AccountCreator, r io.Reader) (*Result, error) {
	parsed, err := Parse(r)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Total:  len(parsed.Rows) + len(parsed.Rejected),
		Errors: []string{},
	}
	for _, rej := range parsed.Rejected {
		result.Skipped++
		result.Errors = append(result.Errors, rej.String())
	}

	for _, row := range parsed.Rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := totp.ValidateSecret(row.Secret); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, Rejected{Line: row.Line, Reason: "invalid secret"}.String())
			continue
		}

		_, err := accounts.Create(ctx, repository.NewAccount{
			Issuer: row.Issuer,
			Name:   row.Account,
			Secret: row.Secret,
			Remark: row.Remark,
		})
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, Rejected{Line: row.Line, Reason: "could not be saved"}.String())
			continue
		}
		result.Imported++
	}
	return result, nil
}
