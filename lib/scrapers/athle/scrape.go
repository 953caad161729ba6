package athle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"athletrack-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/athle")

type ErrorKind int

const (
	KindStatusError ErrorKind = iota
	KindTimeout
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindStatusError:
		return "status-error"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// ScrapeError is the terminal failure of a fetch after every retry
// attempt was exhausted.
type ScrapeError struct {
	Kind     ErrorKind
	Attempts int
	Err      error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape failed after %d attempts (%s): %v", e.Attempts, e.Kind, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Request identifies one rankings table on the source site.
type Request struct {
	EventCode int
	// "M" or "F"
	Gender   string
	Year     int
	Category string
}

func (r Request) queryParams() url.Values {
	query := url.Values{}
	query.Set("frmpostback", "true")
	query.Set("frmbase", "bilans")
	query.Set("frmmode", "1")
	query.Set("frmespace", "0")
	query.Set("frmannee", strconv.Itoa(r.Year))
	query.Set("frmepreuve", strconv.Itoa(r.EventCode))
	query.Set("frmsexe", r.Gender)
	query.Set("frmcategorie", r.Category)
	query.Set("frmdepartement", "")
	query.Set("frmligue", "")
	query.Set("frmnationalite", "")
	query.Set("frmvent", "VR")
	query.Set("frmamaxi", "")
	return query
}

// FetchRankings fetches and parses the rankings table for req.
//
// Transport failures (timeouts, non-2xx statuses) are retried up to the
// configured attempt ceiling with exponential backoff, plus a random
// human-ish delay before every attempt after the first. A page without
// a recognizable results table is NOT an error: it yields an empty
// snapshot, the caller decides what an empty table means.
func (c *Client) FetchRankings(ctx context.Context, req Request) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "FetchRankings")
	defer span.End()
	span.SetAttributes(
		attribute.Int("event_code", req.EventCode),
		attribute.String("gender", req.Gender),
	)

	slog.InfoContext(ctx, "scraping rankings", "event_code", req.EventCode, "gender", req.Gender)

	var lastErr error
	lastKind := KindOther

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			time.Sleep(c.delay())
		}

		slog.DebugContext(ctx, "fetch attempt", "attempt", attempt, "max_retries", c.maxRetries)
		res, err := c.http.R().
			SetContext(ctx).
			SetHeaders(requestHeaders()).
			SetQueryParamsFromValues(req.queryParams()).
			Get("")

		switch {
		case err != nil:
			lastErr = err
			lastKind = classify(err)
			slog.WarnContext(ctx, "fetch attempt failed",
				"attempt", attempt, "max_retries", c.maxRetries, "kind", lastKind.String(), "err", err)
		case res.IsError():
			lastErr = fmt.Errorf("unexpected status: %s", res.Status())
			lastKind = KindStatusError
			slog.WarnContext(ctx, "fetch attempt failed",
				"attempt", attempt, "max_retries", c.maxRetries, "status", res.StatusCode())
		default:
			doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
			if err != nil {
				lastErr = err
				lastKind = KindOther
				slog.WarnContext(ctx, "failed to parse page", "attempt", attempt, "err", err)
				break
			}

			snapshot := extractSnapshot(ctx, doc, req, timezone.Now())
			slog.InfoContext(ctx, "scraped rankings", "rows", len(snapshot.Rows))
			return snapshot, nil
		}

		if attempt < c.maxRetries {
			backoff := c.backoff(attempt)
			slog.InfoContext(ctx, "retrying fetch", "in", backoff.String())
			time.Sleep(backoff)
		}
	}

	scrapeErr := &ScrapeError{
		Kind:     lastKind,
		Attempts: c.maxRetries,
		Err:      lastErr,
	}
	span.RecordError(scrapeErr)
	span.SetStatus(codes.Error, "all fetch attempts failed")
	return Snapshot{}, scrapeErr
}

func classify(err error) ErrorKind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindOther
}
