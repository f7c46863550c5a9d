package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/1Levick3/Analyser-chess/internal/logger"
)

// Engine is a single UCI engine session over stdin/stdout pipes. Calls are
// serialized: at most one in-flight evaluation per session.
type Engine struct {
	path string
	log  *logger.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  ioWriter
	stdout *bufio.Reader
}

type ioWriter interface {
	Write([]byte) (int, error)
}

func NewEngine(path string) (*Engine, error) {
	log := logger.Default().WithPrefix("stockfish")

	if path == "" {
		path = "stockfish"
	}

	log.Info("starting stockfish engine: %s", path)
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Error("failed to create stdin pipe: %v", err)
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Error("failed to create stdout pipe: %v", err)
		return nil, err
	}

	engine := &Engine{
		path:   path,
		log:    log,
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}

	if err := cmd.Start(); err != nil {
		log.Error("failed to start stockfish: %v", err)
		return nil, err
	}

	log.Debug("initializing UCI protocol")
	if err := engine.init(); err != nil {
		log.Error("failed to initialize UCI: %v", err)
		return nil, err
	}

	log.Info("stockfish engine ready")
	return engine, nil
}

func (e *Engine) init() error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if err := e.waitFor("uciok", 2*time.Second); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok", 2*time.Second)
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil {
		return nil
	}

	e.log.Debug("closing stockfish engine")
	_ = e.sendLocked("quit")
	err := e.cmd.Wait()
	e.cmd = nil

	if err != nil {
		e.log.Debug("stockfish process exited: %v", err)
	} else {
		e.log.Debug("stockfish process exited cleanly")
	}

	return err
}

// Evaluate scores the given FEN at the given depth. The returned scores are
// normalized to white's perspective.
func (e *Engine) Evaluate(ctx context.Context, fen string, depth int) (EvalResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	log := e.log.WithFields(map[string]any{
		"depth": depth,
	})

	if depth == 0 {
		depth = 12
	}

	start := time.Now()
	log.Debug("evaluating position")

	if err := e.sendLocked("ucinewgame"); err != nil {
		log.Error("failed to send ucinewgame: %v", err)
		return EvalResult{}, err
	}
	if err := e.sendLocked("position fen " + fen); err != nil {
		log.Error("failed to set position: %v", err)
		return EvalResult{}, err
	}

	// Parse FEN to determine whose turn it is
	parts := strings.Fields(fen)
	isBlackToMove := len(parts) > 1 && parts[1] == "b"

	if err := e.sendLocked(fmt.Sprintf("go depth %d", depth)); err != nil {
		log.Error("failed to start analysis: %v", err)
		return EvalResult{}, err
	}

	var best EvalResult
	var scored bool
	deadline := time.Now().Add(8 * time.Second)
	for {
		if ctx.Err() != nil {
			log.Warn("evaluation cancelled: %v", ctx.Err())
			return EvalResult{}, ctx.Err()
		}
		if time.Now().After(deadline) {
			log.Error("evaluation timed out after 8s")
			return EvalResult{}, errors.New("stockfish timeout")
		}
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			log.Error("failed to read from stockfish: %v", err)
			return EvalResult{}, err
		}
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "info") {
			if score, ok := parseScore(line); ok {
				scored = true
				// UCI scores are from the side to move; flip to white's view.
				if score.mate {
					m := score.value
					if isBlackToMove {
						m = -m
					}
					best.Mate = &m
					best.CP = 0
				} else {
					cp := float64(score.value)
					if isBlackToMove {
						cp = -cp
					}
					best.CP = cp
					best.Mate = nil
				}
			}
		}
		if strings.HasPrefix(line, "bestmove") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				best.BestMove = fields[1]
			}
			if !scored {
				log.Error("engine returned bestmove without a score")
				return EvalResult{}, errors.New("no score in engine output")
			}
			if best.Mate != nil {
				log.Debug("evaluation completed in %v: mate=%d, bestmove=%s", time.Since(start), *best.Mate, best.BestMove)
			} else {
				log.Debug("evaluation completed in %v: cp=%.0f, bestmove=%s", time.Since(start), best.CP, best.BestMove)
			}
			return best, nil
		}
	}
}

type uciScore struct {
	value int
	mate  bool
}

func parseScore(line string) (uciScore, bool) {
	parts := strings.Fields(line)
	for i := 0; i < len(parts); i++ {
		if parts[i] == "score" && i+2 < len(parts) {
			switch parts[i+1] {
			case "cp":
				if v, err := strconv.Atoi(parts[i+2]); err == nil {
					return uciScore{value: v}, true
				}
			case "mate":
				if v, err := strconv.Atoi(parts[i+2]); err == nil {
					return uciScore{value: v, mate: true}, true
				}
			}
		}
	}
	return uciScore{}, false
}

func (e *Engine) send(cmd string) error {
	return e.sendLocked(cmd)
}

func (e *Engine) sendLocked(cmd string) error {
	_, err := e.stdin.Write([]byte(cmd + "\n"))
	return err
}

func (e *Engine) waitFor(marker string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if time.Now().After(deadline) {
			e.log.Error("timeout waiting for %s", marker)
			return fmt.Errorf("timeout waiting for %s", marker)
		}
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			return err
		}
		if strings.Contains(line, marker) {
			return nil
		}
	}
}
