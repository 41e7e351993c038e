package trading

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/mkarlen/starhelm/internal/infrastructure/logging"
)

// TradeLog appends tab-separated operator records under the log directory:
// trades.log gets one line per transaction, credits.log one line per balance
// sample. Lines carry ISO timestamps so the files sort and join cleanly.
type TradeLog struct {
	mu      sync.Mutex
	trades  *os.File
	credits *os.File

	// SessionID tags log lines from one daemon run
	SessionID string
}

// NewTradeLog opens (creating if needed) the trade and credits logs in dir
func NewTradeLog(dir string) (*TradeLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	trades, err := os.OpenFile(filepath.Join(dir, "trades.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trades.log: %w", err)
	}
	credits, err := os.OpenFile(filepath.Join(dir, "credits.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		trades.Close()
		return nil, fmt.Errorf("failed to open credits.log: %w", err)
	}

	sessionID := uuid.NewString()[:8]
	logging.Infof("trade log session %s writing to %s", sessionID, dir)
	return &TradeLog{trades: trades, credits: credits, SessionID: sessionID}, nil
}

// LogTrade appends one transaction line:
// ts\tACTION\tship\twaypoint\tgood\tunits\tunit\ttotal
func (l *TradeLog) LogTrade(ts, action, ship, waypoint, good string, units int, unitPrice, totalPrice float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.trades, "%s\t%s\t%s\t%s\t%s\t%d\t%.0f\t%.0f\n",
		ts, action, ship, waypoint, good, units, unitPrice, totalPrice)
	return err
}

// LogCredits appends one balance line: ts\tcredits
func (l *TradeLog) LogCredits(ts string, credits int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.credits, "%s\t%d\n", ts, credits)
	return err
}

// Close flushes and closes both files
func (l *TradeLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.trades.Close(); err != nil {
		l.credits.Close()
		return err
	}
	return l.credits.Close()
}
