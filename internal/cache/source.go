package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"fincircle/internal/core"
	"fincircle/internal/report"
	"fincircle/internal/sheets"
)

// sharedFetchTimeout bounds an upstream fetch once no single caller owns it.
const sharedFetchTimeout = 30 * time.Second

// CachedSource memoizes fetched record sets per owner, year and kind.
// Concurrent misses for the same key share a single upstream fetch.
type CachedSource struct {
	next  sheets.RecordSource
	cache Cache[[]core.RawRecord]
	group singleflight.Group
}

var _ sheets.RecordSource = (*CachedSource)(nil)

func NewCachedSource(next sheets.RecordSource, c Cache[[]core.RawRecord]) *CachedSource {
	return &CachedSource{next: next, cache: c}
}

// The whole year is fetched and cached regardless of the window's month;
// month filtering happens downstream. The shared fetch is detached from the
// caller that started it, so one caller cancelling does not fail the others;
// each caller still stops waiting when its own ctx is done.
func (s *CachedSource) FetchRecords(ctx context.Context, ownerID string, window report.Window, kind sheets.RecordKind) ([]core.RawRecord, error) {
	key := recordKey(ownerID, window.Year, kind)
	if rows, ok := s.cache.Get(key); ok {
		return rows, nil
	}
	ch := s.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		rows, err := s.next.FetchRecords(fetchCtx, ownerID, report.YearWindow(window.Year), kind)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, rows)
		return rows, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]core.RawRecord), nil
	}
}

// Invalidate drops every cached set for the owner.
func (s *CachedSource) Invalidate(ownerID string) int {
	return s.cache.DeletePrefix(ownerPrefix(ownerID))
}

func ownerPrefix(ownerID string) string {
	return fmt.Sprintf("%d:%s|", len(ownerID), ownerID)
}

// Length-prefixing the owner keeps "a|b" and "a" from colliding.
func recordKey(ownerID string, year int, kind sheets.RecordKind) string {
	return fmt.Sprintf("%s%d|%s", ownerPrefix(ownerID), year, kind)
}
