// Package youtube implements the YouTube lead hunter: it probes a search provider
// with a list of niche terms and keeps one qualifying video per channel.
package youtube

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/client"
	"github.com/researchaccelerator-hub/youtube-lead-hunter/common"
	"github.com/researchaccelerator-hub/youtube-lead-hunter/model"
	youtubemodel "github.com/researchaccelerator-hub/youtube-lead-hunter/model/youtube"
	"github.com/rs/zerolog/log"
)

const (
	uploadDateLayout  = "20060102"
	leadDateLayout    = "02/01/2006"
	bannerDateLayout  = "01/02/2006"
	missingUploadDate = "00000000"
)

// LogFunc receives the user-facing progress lines of a hunt, in the order they are produced.
type LogFunc func(msg string)

// LeadWriter persists accepted leads
type LeadWriter interface {
	AppendLeads(leads []model.Lead) error
	Path() string
}

// Option configures a LeadHunter
type Option func(*LeadHunter)

// WithClock overrides the time source used for the cutoff date
func WithClock(now func() time.Time) Option {
	return func(h *LeadHunter) {
		h.now = now
	}
}

// WithRunID sets the run identifier reported in the Summary
func WithRunID(runID string) Option {
	return func(h *LeadHunter) {
		h.runID = runID
	}
}

// Summary describes the outcome of one Search call
type Summary struct {
	RunID       string `json:"run_id"`
	Terms       int    `json:"terms"`
	Probed      int    `json:"probed"`
	Collected   int    `json:"collected"`
	Saved       int    `json:"saved"`
	OutputFile  string `json:"output_file"`
	GoalReached bool   `json:"goal_reached"`
	Stopped     bool   `json:"stopped"`
}

// LeadHunter filters provider search results into leads.
// A LeadHunter belongs to a single hunt run and must not be shared between runs;
// only Stop may be called from another goroutine.
type LeadHunter struct {
	cfg      common.HuntConfig
	provider client.SearchProvider
	store    LeadWriter
	sink     LogFunc
	now      func() time.Time
	runID    string

	cutoffDate   string
	seenChannels map[string]struct{}
	results      []model.Lead
	goalReached  bool
	stop         atomic.Bool
}

// NewLeadHunter creates a hunter for one run. The cutoff date is fixed at construction.
func NewLeadHunter(cfg common.HuntConfig, provider client.SearchProvider, store LeadWriter, sink LogFunc, opts ...Option) *LeadHunter {
	h := &LeadHunter{
		cfg:          cfg,
		provider:     provider,
		store:        store,
		sink:         sink,
		now:          time.Now,
		seenChannels: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.sink == nil {
		h.sink = func(string) {}
	}

	h.cutoffDate = h.now().AddDate(0, 0, -cfg.DaysAgo).Format(uploadDateLayout)
	return h
}

// CutoffDate returns the earliest accepted upload date as YYYYMMDD
func (h *LeadHunter) CutoffDate() string {
	return h.cutoffDate
}

// Stop asks a running Search to finish after the current candidate
func (h *LeadHunter) Stop() {
	h.stop.Store(true)
}

func (h *LeadHunter) stopRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		h.stop.Store(true)
	}
	return h.stop.Load()
}

// Validate reports whether candidate qualifies as a new lead for this run.
func (h *LeadHunter) Validate(candidate *youtubemodel.VideoCandidate) bool {
	if candidate == nil {
		return false
	}

	if candidate.ChannelName == "" {
		return false
	}
	if _, seen := h.seenChannels[candidate.ChannelName]; seen {
		return false
	}

	if !h.boundsUsable() {
		return false
	}

	duration := candidate.DurationSeconds
	if !common.IsFinite(duration) || duration < h.cfg.DurationMinSeconds || duration > h.cfg.DurationMaxSeconds {
		return false
	}

	uploadDate := candidate.UploadDate
	if uploadDate == "" {
		uploadDate = missingUploadDate
	}
	if !isUploadDate(uploadDate) || uploadDate < h.cutoffDate {
		return false
	}

	if candidate.ViewCount < h.cfg.ViewsMin || candidate.ViewCount > h.cfg.ViewsMax {
		return false
	}

	return true
}

// boundsUsable guards against bounds no real candidate can be compared with
func (h *LeadHunter) boundsUsable() bool {
	return common.IsFinite(h.cfg.DurationMinSeconds) &&
		common.IsFinite(h.cfg.DurationMaxSeconds) &&
		h.cfg.ViewsMin >= 0 &&
		h.cfg.ViewsMax >= 0
}

// isUploadDate reports whether s is exactly eight ASCII digits
func isUploadDate(s string) bool {
	if len(s) != len(uploadDateLayout) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Search probes every term in order, collects leads until the goal or a stop,
// and persists what was collected. It never returns an error: failures of a
// single term are logged and the hunt moves on to the next term.
func (h *LeadHunter) Search(ctx context.Context, terms []string) Summary {
	summary := Summary{
		RunID:      h.runID,
		Terms:      len(terms),
		OutputFile: h.store.Path(),
	}

	h.banner()

	for _, raw := range terms {
		if h.goalReached || h.stopRequested(ctx) {
			break
		}

		term := strings.TrimSpace(raw)
		if term == "" {
			continue
		}

		h.sink(fmt.Sprintf("Probing niche: '%s'...", term))
		summary.Probed++

		if err := h.probe(ctx, term); err != nil {
			if h.stopRequested(ctx) {
				log.Info().Err(err).Str("term", term).Str("run_id", h.runID).Msg("Hunt stopped while probing term")
				break
			}
			h.sink(fmt.Sprintf("Error on term '%s': %v", term, err))
			log.Error().Err(err).Str("term", term).Str("run_id", h.runID).Msg("Probing term failed")
		}
	}

	collected := len(h.results)
	summary.Collected = collected
	summary.GoalReached = h.goalReached
	summary.Stopped = h.stop.Load()

	if h.persist() {
		summary.Saved = collected
	}

	h.sink(fmt.Sprintf("Hunt finished. Total new leads: %d", collected))
	log.Info().
		Str("run_id", h.runID).
		Int("probed", summary.Probed).
		Int("collected", summary.Collected).
		Int("saved", summary.Saved).
		Bool("goal_reached", summary.GoalReached).
		Bool("stopped", summary.Stopped).
		Msg("Hunt finished")

	return summary
}

func (h *LeadHunter) banner() {
	cutoff, err := time.Parse(uploadDateLayout, h.cutoffDate)
	from := h.cutoffDate
	if err == nil {
		from = cutoff.Format(bannerDateLayout)
	}

	h.sink("STARTING LEAD HUNT")
	h.sink(fmt.Sprintf("Videos from: %s", from))
	h.sink(fmt.Sprintf("View Filter: Min %d | Max %d", h.cfg.ViewsMin, h.cfg.ViewsMax))
	h.sink(strings.Repeat("-", 40))
}

// probe runs one provider query and walks its candidates
func (h *LeadHunter) probe(ctx context.Context, term string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("term", term).Msg("Recovered from panic while probing term")
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	result, err := h.provider.SearchVideos(ctx, term, h.cfg.SearchLimitPerTerm)
	if err != nil {
		return err
	}
	if result == nil || result.Entries == nil {
		log.Debug().Str("term", term).Msg("Provider returned no results collection")
		return nil
	}

	for _, candidate := range result.Entries {
		if h.stopRequested(ctx) {
			return nil
		}
		if !h.Validate(candidate) {
			continue
		}

		lead := newLead(candidate)
		h.results = append(h.results, lead)
		h.seenChannels[lead.Channel] = struct{}{}

		h.sink(fmt.Sprintf("TARGET: %s", lead.Channel))
		h.sink(fmt.Sprintf("   %d views | %s", lead.Views, lead.Date))

		if len(h.results) >= h.cfg.TotalGoal {
			h.sink("Total lead goal reached!")
			h.goalReached = true
			return nil
		}
	}
	return nil
}

// persist appends the collected leads to the store and clears them on success.
// A failed write keeps the leads so a later call can retry.
func (h *LeadHunter) persist() bool {
	if len(h.results) == 0 {
		h.sink("No results to save.")
		return false
	}

	if err := h.store.AppendLeads(h.results); err != nil {
		h.sink(fmt.Sprintf("Error saving CSV: %v", err))
		log.Error().Err(err).Str("file", h.store.Path()).Int("leads", len(h.results)).Msg("Failed to save leads")
		return false
	}

	h.sink(fmt.Sprintf("%d leads saved to '%s'", len(h.results), h.store.Path()))
	h.results = nil
	return true
}

func newLead(candidate *youtubemodel.VideoCandidate) model.Lead {
	return model.Lead{
		Channel:     candidate.ChannelName,
		Title:       candidate.Title,
		Views:       candidate.ViewCount,
		ChannelLink: channelLink(candidate),
		Date:        displayDate(candidate.UploadDate),
	}
}

// displayDate renders YYYYMMDD as DD/MM/YYYY and keeps anything else unchanged
func displayDate(raw string) string {
	t, err := time.Parse(uploadDateLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format(leadDateLayout)
}

func channelLink(candidate *youtubemodel.VideoCandidate) string {
	switch {
	case candidate.UploaderURL != "":
		return candidate.UploaderURL
	case candidate.ChannelURL != "":
		return candidate.ChannelURL
	case candidate.ChannelID != "":
		return "https://www.youtube.com/channel/" + candidate.ChannelID
	default:
		return ""
	}
}
