package accounts

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/otpboard/pkg/otpboard/codes"
	"github.com/mikepea/otpboard/pkg/otpboard/countdown"
	"github.com/mikepea/otpboard/pkg/otpboard/models"
)

// AccountCode is one account's code inside a stream event
type AccountCode struct {
	ID    uint   `json:"id"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// StreamEvent is a countdown tick for every account sharing one period.
// Codes is only filled when a new period started.
type StreamEvent struct {
	Period     int            `json:"period"`
	Mode       countdown.Mode `json:"mode"`
	Remaining  int            `json:"remaining"`
	Progress   float64        `json:"progress"`
	Regenerate bool           `json:"regenerate"`
	Codes      []AccountCode  `json:"codes,omitempty"`
}

func groupByPeriod(accounts []models.Account, defaultPeriod int) map[int][]models.Account {
	groups := map[int][]models.Account{defaultPeriod: nil}
	for _, acc := range accounts {
		p := acc.EffectivePeriod()
		groups[p] = append(groups[p], acc)
	}
	return groups
}

func buildEvent(s countdown.Snapshot, regenerate bool, group []models.Account) StreamEvent {
	ev := StreamEvent{
		Period:     s.Period,
		Mode:       s.Mode,
		Remaining:  s.Remaining,
		Progress:   s.Progress,
		Regenerate: regenerate,
	}
	if !regenerate {
		return ev
	}

	ev.Codes = make([]AccountCode, len(group))
	for i, acc := range group {
		ev.Codes[i] = AccountCode{ID: acc.ID}
		res, err := codes.At(acc.Secret, s)
		if err != nil {
			ev.Codes[i].Error = err.Error()
			continue
		}
		ev.Codes[i].Code = res.Code
	}
	return ev
}

// Stream pushes countdown ticks and fresh codes as server-sent events.
// Default-period accounts follow the global timer; every other period runs its
// own local timer. The account set is read once when the stream opens.
// @Summary Stream codes
// @Description Server-sent "codes" events: one per period group every second, with codes whenever a period rolls over
// @Tags accounts
// @Produce text/event-stream
// @Success 200 {object} StreamEvent
// @Security BearerAuth
// @Router /accounts/stream [get]
func (h *Handler) Stream(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	accounts, err := h.store.Accounts.FindAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch accounts"})
		return
	}

	sched := h.generator.Scheduler()
	groups := groupByPeriod(accounts, sched.DefaultPeriod())

	periods := make([]int, 0, len(groups))
	for p := range groups {
		periods = append(periods, p)
	}
	sort.Ints(periods)

	events := make(chan StreamEvent, len(periods))
	var wg sync.WaitGroup
	for _, period := range periods {
		timer := sched.TimerFor(period)
		group := groups[period]
		wg.Add(1)
		go func() {
			defer wg.Done()
			timer.Run(ctx, h.tick, func(s countdown.Snapshot, regenerate bool) {
				select {
				case events <- buildEvent(s, regenerate, group):
				case <-ctx.Done():
				}
			})
		}()
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	h.logger.DebugContext(ctx, "code stream opened", "accounts", len(accounts), "timers", len(periods))
	defer wg.Wait()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			c.SSEvent("codes", ev)
			c.Writer.Flush()
		}
	}
}
