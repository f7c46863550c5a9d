package analysis

import (
	"context"
	"strings"

	"github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"

	"github.com/1Levick3/Analyser-chess/internal/engine"
	"github.com/1Levick3/Analyser-chess/internal/errors"
	"github.com/1Levick3/Analyser-chess/internal/logger"
	"github.com/1Levick3/Analyser-chess/internal/models"
	"github.com/1Levick3/Analyser-chess/internal/pgn"
)

// MateCap bounds mate scores so ordering comparisons stay total: mate in N
// from white's side becomes MateCap - 10*N, mirrored for black. Raw
// centipawn scores are clamped to the same range.
const MateCap = 10000.0

// Thresholds are the tier boundaries in centipawns of loss from the mover's
// perspective. They are configuration, not constants, so they can be tuned
// without touching the classification algorithm.
type Thresholds struct {
	Blunder    float64
	Mistake    float64
	Inaccuracy float64
}

// DefaultThresholds returns the stock tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Blunder: 300, Mistake: 100, Inaccuracy: 50}
}

// Classifier turns one game's move sequence plus an evaluator into per-ply
// classifications and a per-game tally for the tracked player.
type Classifier struct {
	username   string
	depth      int
	bookPlies  int
	thresholds Thresholds
}

// NewClassifier creates a classifier for the given tracked player. The
// username is explicit configuration, never inferred from game headers.
func NewClassifier(username string, depth, bookPlies int, thresholds Thresholds) *Classifier {
	if bookPlies <= 0 {
		bookPlies = 12
	}
	return &Classifier{
		username:   username,
		depth:      depth,
		bookPlies:  bookPlies,
		thresholds: thresholds,
	}
}

// ClassifyGame replays the game ply by ply, scoring each position once with
// the evaluator and carrying the after-score forward as the next ply's
// before-score. Only the tracked player's moves are tiered; opponent moves
// advance the board and are recorded untallied.
func (c *Classifier) ClassifyGame(ctx context.Context, rec models.GameRecord, ev engine.Evaluator) (*models.GameResult, error) {
	log := logger.FromContext(ctx).WithField("game", rec.URL)

	playedAs, opponent, declared, playerRating, opponentRating, err := c.attribute(rec)
	if err != nil {
		return nil, err
	}
	userIsWhite := playedAs == "white"

	pgnOpt, err := chess.PGN(strings.NewReader(rec.PGN))
	if err != nil {
		log.Warn("failed to parse PGN: %v", err)
		return nil, errors.NewMalformedGameError(rec.URL, err)
	}
	chessGame := chess.NewGame(pgnOpt)

	positions := chessGame.Positions()
	moves := chessGame.Moves()
	if len(positions) < len(moves)+1 {
		log.Warn("unexpected positions length: got %d positions for %d moves", len(positions), len(moves))
		return nil, errors.NewMalformedGameError(rec.URL, nil)
	}

	result := &models.GameResult{
		URL:            rec.URL,
		EndTime:        rec.EndTime,
		TimeClass:      rec.TimeClass,
		PlayedAs:       playedAs,
		Opponent:       opponent,
		Result:         declared,
		PlayerRating:   playerRating,
		OpponentRating: opponentRating,
	}
	result.ECOCode, result.OpeningName = c.identifyOpening(rec, moves)

	if len(moves) == 0 {
		// A zero-move game is a valid, empty result, not an error.
		return result, nil
	}

	log.Debug("analyzing %d plies at depth %d", len(moves), c.depth)

	// The starting position has no preceding after-score, so it is the one
	// position evaluated before the loop.
	prev, err := ev.Evaluate(ctx, positions[0].String(), c.depth)
	if err != nil {
		log.Warn("eval of starting position failed: %v", err)
		return nil, errors.NewEvaluationError(1, err)
	}

	for i := 0; i < len(moves); i++ {
		if ctx.Err() != nil {
			log.Warn("classification cancelled: %v", ctx.Err())
			return nil, errors.NewEvaluationError(i+1, ctx.Err())
		}

		// Plies alternate starting from white.
		isWhiteMove := i%2 == 0

		after, err := ev.Evaluate(ctx, positions[i+1].String(), c.depth)
		if err != nil {
			log.Warn("eval after ply %d failed: %v", i+1, err)
			return nil, errors.NewEvaluationError(i+1, err)
		}

		// Both scores are in the white reference frame. Flip the delta for
		// black so it is always the mover's own gain or loss.
		s0 := cappedScore(prev)
		s1 := cappedScore(after)
		delta := s1 - s0
		if !isWhiteMove {
			delta = s0 - s1
		}

		side := "white"
		if !isWhiteMove {
			side = "black"
		}

		tier := models.TierOpponent
		if isWhiteMove == userIsWhite {
			tier = c.classifyDelta(delta)
			result.TrackedMoves++
			switch tier {
			case models.TierBlunder:
				result.Blunders++
			case models.TierMistake:
				result.Mistakes++
			case models.TierInaccuracy:
				result.Inaccuracies++
			case models.TierGood:
				result.GoodMoves++
			case models.TierNeutral:
				result.NeutralMoves++
			}
		}

		result.Moves = append(result.Moves, models.MoveClassification{
			Ply:   i + 1,
			Side:  side,
			Tier:  tier,
			Delta: delta,
		})

		prev = after
	}

	log.Debug("classified %d tracked plies: %d blunders, %d mistakes, %d inaccuracies, %d good",
		result.TrackedMoves, result.Blunders, result.Mistakes, result.Inaccuracies, result.GoodMoves)
	return result, nil
}

// attribute resolves which side the tracked player played. Exactly one side
// must match; anything else is an attribution failure, never a guess.
func (c *Classifier) attribute(rec models.GameRecord) (playedAs, opponent, declared string, playerRating, opponentRating int, err error) {
	whiteMatch := strings.EqualFold(rec.White.Username, c.username)
	blackMatch := strings.EqualFold(rec.Black.Username, c.username)
	if whiteMatch == blackMatch {
		return "", "", "", 0, 0, errors.NewAttributionError(c.username, rec.White.Username, rec.Black.Username)
	}
	if whiteMatch {
		return "white", rec.Black.Username, rec.White.Result, rec.White.Rating, rec.Black.Rating, nil
	}
	return "black", rec.White.Username, rec.Black.Result, rec.Black.Rating, rec.White.Rating, nil
}

func (c *Classifier) classifyDelta(delta float64) string {
	t := c.thresholds
	switch {
	case delta <= -t.Blunder:
		return models.TierBlunder
	case delta <= -t.Mistake:
		return models.TierMistake
	case delta <= -t.Inaccuracy:
		return models.TierInaccuracy
	case delta >= 0:
		return models.TierGood
	default:
		return models.TierNeutral
	}
}

// identifyOpening tries the ECO book over the first bookPlies plies, falls
// back to the game's own header metadata, and finally to "Unknown"/"?". The
// chain is total: it always produces a value.
func (c *Classifier) identifyOpening(rec models.GameRecord, moves []*chess.Move) (code, name string) {
	limit := len(moves)
	if limit > c.bookPlies {
		limit = c.bookPlies
	}
	if limit > 0 {
		book := opening.NewBookECO()
		if found := book.Find(moves[:limit]); found != nil {
			return found.Code(), found.Title()
		}
	}

	headers := pgn.ParseHeaders(rec.PGN)
	code = headers["ECO"]
	name = headers["Opening"]
	if name == "" {
		name = pgn.OpeningFromECOUrl(headers["ECOUrl"])
	}
	if name == "" {
		name = "Unknown"
	}
	if code == "" {
		code = "?"
	}
	return code, name
}

func cappedScore(r engine.EvalResult) float64 {
	if r.Mate != nil {
		n := *r.Mate
		if n >= 0 {
			return MateCap - 10*float64(n)
		}
		return -(MateCap + 10*float64(n))
	}
	if r.CP > MateCap {
		return MateCap
	}
	if r.CP < -MateCap {
		return -MateCap
	}
	return r.CP
}
