package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHerbivoreCrash    BookmarkType = "herbivore_crash"
	BookmarkCarnivoreRecovery BookmarkType = "carnivore_recovery"
	BookmarkExtinction        BookmarkType = "extinction"
	BookmarkStableCoexistence BookmarkType = "stable_coexistence"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Year        int          `csv:"year"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"year", b.Year,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the population history.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []YearStats
	historySize int
	historyIdx  int
	historyFull bool

	recentCarnMin   int  // minimum carnivore count since the last recovery
	recentHerbPeak  int  // peak herbivore count since the last crash
	stableYears     int  // consecutive years with stable populations
	herbSeen        bool // herbivores were present at some point
	carnSeen        bool // carnivores were present at some point
	herbExtinctSent bool
	carnExtinctSent bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stability detection
	}
	return &BookmarkDetector{
		history:       make([]YearStats, historySize),
		historySize:   historySize,
		recentCarnMin: -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats YearStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(YearStats) *Bookmark{
		bd.checkExtinction,
		bd.checkHerbivoreCrash,
		bd.checkCarnivoreRecovery,
		bd.checkStableCoexistence,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if bd.carnSeen && (bd.recentCarnMin < 0 || stats.Carnivores < bd.recentCarnMin) {
		bd.recentCarnMin = stats.Carnivores
	}
	if stats.Herbivores > bd.recentHerbPeak {
		bd.recentHerbPeak = stats.Herbivores
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats YearStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest history entries, oldest first.
func (bd *BookmarkDetector) recent(n int) []YearStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	n = min(n, size)
	out := make([]YearStats, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, bd.history[(bd.historyIdx-i+bd.historySize)%bd.historySize])
	}
	return out
}

func (bd *BookmarkDetector) checkExtinction(stats YearStats) *Bookmark {
	var b *Bookmark
	if stats.Herbivores > 0 {
		bd.herbSeen, bd.herbExtinctSent = true, false
	} else if bd.herbSeen && !bd.herbExtinctSent {
		bd.herbExtinctSent = true
		b = &Bookmark{Type: BookmarkExtinction, Year: stats.Year, Description: "Herbivores died out"}
	}
	if stats.Carnivores > 0 {
		bd.carnSeen, bd.carnExtinctSent = true, false
	} else if bd.carnSeen && !bd.carnExtinctSent && b == nil {
		bd.carnExtinctSent = true
		b = &Bookmark{Type: BookmarkExtinction, Year: stats.Year, Description: "Carnivores died out"}
	}
	return b
}

func (bd *BookmarkDetector) checkHerbivoreCrash(stats YearStats) *Bookmark {
	if bd.recentHerbPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Herbivores)/float64(bd.recentHerbPeak)
	if drop > 0.30 && stats.Herbivores < bd.recentHerbPeak-10 {
		oldPeak := bd.recentHerbPeak
		bd.recentHerbPeak = stats.Herbivores

		return &Bookmark{
			Type:        BookmarkHerbivoreCrash,
			Year:        stats.Year,
			Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Herbivores),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCarnivoreRecovery(stats YearStats) *Bookmark {
	if bd.recentCarnMin <= 0 || bd.recentCarnMin > 3 {
		return nil
	}

	if stats.Carnivores >= bd.recentCarnMin*3 && stats.Carnivores >= 6 {
		oldMin := bd.recentCarnMin
		bd.recentCarnMin = stats.Carnivores

		return &Bookmark{
			Type:        BookmarkCarnivoreRecovery,
			Year:        stats.Year,
			Description: fmt.Sprintf("Carnivores recovered from %d to %d", oldMin, stats.Carnivores),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStableCoexistence(stats YearStats) *Bookmark {
	if stats.Herbivores < 10 || stats.Carnivores < 3 {
		bd.stableYears = 0
		return nil
	}

	history := append(bd.recent(3), stats)
	if len(history) < 4 {
		return nil
	}

	herb := make([]float64, len(history))
	carn := make([]float64, len(history))
	for i, h := range history {
		herb[i] = float64(h.Herbivores)
		carn[i] = float64(h.Carnivores)
	}

	// Coefficient of variation below 20% for both species.
	if cv(herb) < 0.2 && cv(carn) < 0.2 {
		bd.stableYears++
	} else {
		bd.stableYears = 0
	}

	if bd.stableYears == 5 {
		return &Bookmark{
			Type:        BookmarkStableCoexistence,
			Year:        stats.Year,
			Description: fmt.Sprintf("Stable coexistence with %d herbivores, %d carnivores over 5+ years", stats.Herbivores, stats.Carnivores),
		}
	}
	return nil
}

func cv(x []float64) float64 {
	mean, std := stat.PopMeanStdDev(x, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
