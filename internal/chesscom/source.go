package chesscom

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/1Levick3/Analyser-chess/internal/logger"
	"github.com/1Levick3/Analyser-chess/internal/models"
)

// standardRules is the only game variant the analyser handles.
const standardRules = "chess"

// FetchGamesSince returns the player's finished standard games strictly
// newer than the checkpoint timestamp, oldest first. Games from other
// variants, games without notation, and in-progress games (no per-side
// result yet) are filtered out here so the classifier never sees them.
func (c *Client) FetchGamesSince(ctx context.Context, username string, since int64) ([]models.GameRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("username", username)

	archives, err := c.FetchArchives(ctx, username)
	if err != nil {
		return nil, err
	}
	archives = pruneArchives(archives, since)
	log.Debug("fetching %d archives after checkpoint pruning", len(archives))

	var records []models.GameRecord
	for _, archiveURL := range archives {
		monthly, err := c.FetchMonthly(ctx, archiveURL)
		if err != nil {
			return nil, err
		}
		for _, mg := range monthly {
			if !playable(mg, since) {
				continue
			}
			records = append(records, models.GameRecord{
				URL:       mg.URL,
				PGN:       mg.PGN,
				TimeClass: mg.TimeClass,
				EndTime:   mg.EndTime,
				White:     models.PlayerInfo(mg.White),
				Black:     models.PlayerInfo(mg.Black),
			})
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].EndTime < records[j].EndTime })
	log.Info("found %d new games since checkpoint %d", len(records), since)
	return records, nil
}

func playable(mg MonthlyGame, since int64) bool {
	if mg.EndTime <= since {
		return false
	}
	if mg.Rules != standardRules {
		return false
	}
	if mg.PGN == "" {
		return false
	}
	// A finished game always carries a per-side result.
	if mg.White.Result == "" || mg.Black.Result == "" {
		return false
	}
	return true
}

// pruneArchives drops monthly archives that end before the checkpoint month.
// Archive URLs look like: https://api.chess.com/pub/player/{username}/games/YYYY/MM
func pruneArchives(archives []string, since int64) []string {
	if since <= 0 {
		return archives
	}
	sinceMonth := time.Unix(since, 0).UTC()
	cutoff := time.Date(sinceMonth.Year(), sinceMonth.Month(), 1, 0, 0, 0, 0, time.UTC)

	var kept []string
	for _, url := range archives {
		parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
		if len(parts) < 2 {
			continue
		}
		year, err1 := strconv.Atoi(parts[len(parts)-2])
		month, err2 := strconv.Atoi(parts[len(parts)-1])
		if err1 != nil || err2 != nil {
			continue
		}
		archiveMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		if archiveMonth.Before(cutoff) {
			continue
		}
		kept = append(kept, url)
	}
	return kept
}
