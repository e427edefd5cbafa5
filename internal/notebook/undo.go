package notebook

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/jot/internal/domain"
	"github.com/MrSnakeDoc/jot/internal/logger"
	"github.com/MrSnakeDoc/jot/internal/toast"
)

// pendingUndo is the last delete that can still be undone. A newer delete
// overwrites it; token tells the two apart.
type pendingUndo struct {
	token   uint64
	records []domain.Note
	expires time.Time
}

func (nb *Notebook) offerUndo(records []domain.Note, msg string) {
	nb.mu.Lock()
	nb.undoSeq++
	token := nb.undoSeq
	nb.pending = pendingUndo{
		token:   token,
		records: records,
		expires: nb.now().Add(nb.undoWindow),
	}
	nb.mu.Unlock()

	nb.toasts.Show(msg, toast.Success,
		toast.WithDuration(nb.undoWindow),
		toast.WithAction("Undo", func() {
			nb.undo(context.Background(), token)
		}))
}

// undo restores the records of the delete identified by token, if it is
// still the pending one and its window has not elapsed.
func (nb *Notebook) undo(ctx context.Context, token uint64) int {
	nb.mu.Lock()
	p := nb.pending
	if p.token != token || p.records == nil || nb.now().After(p.expires) {
		nb.mu.Unlock()
		nb.logger.Debug("undo ignored, no longer pending")
		return 0
	}
	nb.pending = pendingUndo{}
	nb.mu.Unlock()

	n := nb.notes.RestoreNotes(ctx, p.records)
	switch {
	case n == 1:
		nb.toasts.Show("Note restored", toast.Success)
	case n > 1:
		nb.toasts.Show(fmt.Sprintf("%d notes restored", n), toast.Success)
	}
	nb.logger.Debug("delete undone", logger.Int("restored", n))
	return n
}
