// Package codes turns stored accounts into live one-time codes.
package codes

import (
	"github.com/mikepea/otpboard/pkg/otpboard/countdown"
	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"github.com/mikepea/otpboard/pkg/otpboard/totp"
)

// Result is a code together with the countdown it belongs to
type Result struct {
	Issuer    string         `json:"issuer,omitempty"`
	Account   string         `json:"account,omitempty"`
	Code      string         `json:"code"`
	Remaining int            `json:"remaining"`
	Period    int            `json:"period"`
	Progress  float64        `json:"progress"`
	Mode      countdown.Mode `json:"mode"`
	Counter   int64          `json:"counter"`
}

// Generator computes codes on the scheduler's clock
type Generator struct {
	scheduler *countdown.Scheduler
}

// NewGenerator creates a Generator
func NewGenerator(scheduler *countdown.Scheduler) *Generator {
	return &Generator{scheduler: scheduler}
}

// Scheduler returns the scheduler the generator reads time from
func (g *Generator) Scheduler() *countdown.Scheduler {
	return g.scheduler
}

// ForAccount returns the current code of acc. Accounts on the default period
// read the global timer; any other period gets a local one.
func (g *Generator) ForAccount(acc *models.Account) (*Result, error) {
	res, err := g.ForSecret(acc.Secret, acc.EffectivePeriod())
	if err != nil {
		return nil, err
	}
	res.Issuer = acc.Issuer
	res.Account = acc.Name
	return res, nil
}

// ForSecret returns the current code of a bare secret
func (g *Generator) ForSecret(secret string, period int) (*Result, error) {
	if period <= 0 {
		period = g.scheduler.DefaultPeriod()
	}
	snap := g.scheduler.TimerFor(period).Snapshot()
	return At(secret, snap)
}

// At computes the code of secret for a snapshot already taken
func At(secret string, snap countdown.Snapshot) (*Result, error) {
	code, err := totp.Code(secret, snap.At, snap.Period)
	if err != nil {
		return nil, err
	}
	return &Result{
		Code:      code,
		Remaining: snap.Remaining,
		Period:    snap.Period,
		Progress:  snap.Progress,
		Mode:      snap.Mode,
		Counter:   snap.Counter,
	}, nil
}
