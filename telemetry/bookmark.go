package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPredationSurge  BookmarkType = "predation_surge"
	BookmarkFireOutbreak    BookmarkType = "fire_outbreak"
	BookmarkAnimalRecovery  BookmarkType = "animal_recovery"
	BookmarkAnimalCrash     BookmarkType = "animal_crash"
	BookmarkStableEcosystem BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Day         int          `csv:"day"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogValue implements slog.LogValuer for structured logging.
func (b Bookmark) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(b.Type)),
		slog.Int("day", b.Day),
		slog.Int64("tick", b.Tick),
		slog.String("description", b.Description),
	)
}

// BookmarkDetector detects notable days from closed daily diagnostics.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []DailyPopulationStats
	historySize int
	historyIdx  int
	historyFull bool

	recentAnimalMin  int // minimum animal count since the last recovery
	recentAnimalPeak int // peak animal count since the last crash
	stableDays       int // consecutive days with steady populations
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:         make([]DailyPopulationStats, historySize),
		historySize:     historySize,
		recentAnimalMin: -1,
	}
}

// Check analyzes a closed day and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(day DailyPopulationStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkSurge(day, BookmarkPredationSurge, "predation deaths", day.DeathsPredation, 5,
			func(h DailyPopulationStats) int { return h.DeathsPredation }); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSurge(day, BookmarkFireOutbreak, "fire deaths", day.DeathsFire, 10,
			func(h DailyPopulationStats) int { return h.DeathsFire }); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkAnimalRecovery(day); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkAnimalCrash(day); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkStableEcosystem(day); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(day)

	if bd.recentAnimalMin < 0 || day.Animals < bd.recentAnimalMin {
		bd.recentAnimalMin = day.Animals
	}
	if day.Animals > bd.recentAnimalPeak {
		bd.recentAnimalPeak = day.Animals
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(day DailyPopulationStats) {
	bd.history[bd.historyIdx] = day
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns recorded days, oldest first.
func (bd *BookmarkDetector) getHistory() []DailyPopulationStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]DailyPopulationStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

// checkSurge fires when a daily count exceeds twice its rolling average.
func (bd *BookmarkDetector) checkSurge(day DailyPopulationStats, typ BookmarkType, what string, current, floor int, get func(DailyPopulationStats) int) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || current < floor {
		return nil
	}

	total := 0
	for _, h := range history {
		total += get(h)
	}
	avg := float64(total) / float64(len(history))
	if float64(current) <= avg*2.0 {
		return nil
	}

	desc := fmt.Sprintf("%d %s, %.1f per day on average", current, what, avg)
	if avg > 0 {
		desc = fmt.Sprintf("%d %s is %.1fx average (%.1f)", current, what, float64(current)/avg, avg)
	}
	return &Bookmark{Type: typ, Day: day.Day, Tick: day.EndTick, Description: desc}
}

func (bd *BookmarkDetector) checkAnimalRecovery(day DailyPopulationStats) *Bookmark {
	if bd.recentAnimalMin < 0 || bd.recentAnimalMin > 10 {
		return nil
	}

	threshold := max(bd.recentAnimalMin*3, 20)
	if day.Animals < threshold {
		return nil
	}
	// Reset the minimum after triggering
	oldMin := bd.recentAnimalMin
	bd.recentAnimalMin = day.Animals

	return &Bookmark{
		Type:        BookmarkAnimalRecovery,
		Day:         day.Day,
		Tick:        day.EndTick,
		Description: fmt.Sprintf("Animal population recovered from %d to %d", oldMin, day.Animals),
	}
}

func (bd *BookmarkDetector) checkAnimalCrash(day DailyPopulationStats) *Bookmark {
	if bd.recentAnimalPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(day.Animals)/float64(bd.recentAnimalPeak)
	if drop <= 0.30 || day.Animals >= bd.recentAnimalPeak-10 {
		return nil
	}
	// Reset peak after crash
	oldPeak := bd.recentAnimalPeak
	bd.recentAnimalPeak = day.Animals

	return &Bookmark{
		Type:        BookmarkAnimalCrash,
		Day:         day.Day,
		Tick:        day.EndTick,
		Description: fmt.Sprintf("Animals crashed %.0f%% from peak %d to %d", drop*100, oldPeak, day.Animals),
	}
}

func (bd *BookmarkDetector) checkStableEcosystem(day DailyPopulationStats) *Bookmark {
	if day.Plants < 10 || day.Animals < 5 {
		bd.stableDays = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	plants := make([]float64, len(recent))
	animals := make([]float64, len(recent))
	for i, h := range recent {
		plants[i] = float64(h.Plants)
		animals[i] = float64(h.Animals)
	}

	// Coefficient of variation below 20% for both kingdoms
	if cv2(plants) < 0.04 && cv2(animals) < 0.04 {
		bd.stableDays++
	} else {
		bd.stableDays = 0
	}

	if bd.stableDays == 5 { // trigger exactly once per stable stretch
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Day:         day.Day,
			Tick:        day.EndTick,
			Description: fmt.Sprintf("Stable ecosystem with %d plants, %d animals over 5+ days", day.Plants, day.Animals),
		}
	}
	return nil
}

// cv2 is the squared coefficient of variation.
func cv2(values []float64) float64 {
	mean, std := MeanStd(values)
	if mean == 0 {
		return 0
	}
	return std * std / (mean * mean)
}
