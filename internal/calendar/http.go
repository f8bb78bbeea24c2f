package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/hh-screener/internal/model"
	"go.uber.org/zap"
)

const (
	slotsPath         = "/slots"
	invitesPath       = "/invites"
	confirmationsPath = "/confirmations"
	userAgent         = "spigell/hh-screener"
)

// Client talks to a booking service over HTTP.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

type slotItem struct {
	Start     time.Time `mapstructure:"start"`
	Available *bool     `mapstructure:"available"`
}

func NewClient(logger *zap.Logger, baseURL, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:  token,
		APIURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// ListSlots returns the available slots from every page, earliest first.
func (c *Client) ListSlots(ctx context.Context) ([]time.Time, error) {
	items, err := c.getItems(ctx, c.APIURL+slotsPath, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	var decoded []slotItem
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode slots: %w", err)
	}

	slots := make([]time.Time, 0, len(decoded))
	for _, item := range decoded {
		if item.Start.IsZero() || (item.Available != nil && !*item.Available) {
			continue
		}
		slots = append(slots, item.Start)
	}
	slices.SortFunc(slots, func(a, b time.Time) int { return a.Compare(b) })

	c.logger.Debug("got slots from calendar", zap.Int("items", len(items)), zap.Int("available", len(slots)))
	return slots, nil
}

func (c *Client) SendInvite(ctx context.Context, cand *model.Candidate, slot time.Time) error {
	return c.postFormData(ctx, c.APIURL+invitesPath, notificationForm(cand, slot))
}

func (c *Client) SendConfirmation(ctx context.Context, cand *model.Candidate, slot time.Time) error {
	return c.postFormData(ctx, c.APIURL+confirmationsPath, notificationForm(cand, slot))
}

func notificationForm(cand *model.Candidate, slot time.Time) map[string]string {
	return map[string]string{
		"candidate_id": cand.ID,
		"name":         cand.Name,
		"email":        cand.Email,
		"start":        slot.Format(time.RFC3339),
	}
}
