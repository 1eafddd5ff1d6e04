package notelist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/jotter/pkg/core"
)

// RenderList writes a plain-text rendering of v.
// itemState, when set, supplies per-note action state (deleting, errors).
func RenderList(w io.Writer, v View, now time.Time, itemState func(core.Note) ItemState) error {
	var b strings.Builder
	b.WriteString("Notes\n\n")

	switch v.Status {
	case StatusLoading:
		b.WriteString("Loading notes...\n")
	case StatusError:
		fmt.Fprintf(&b, "Error: %s\n", v.Error)
	case StatusEmpty:
		b.WriteString("No notes yet. Create your first note!\n")
	default:
		for i, n := range v.Notes {
			if i > 0 {
				b.WriteString("\n")
			}
			st := ItemState{Note: n, CanDelete: true, DeleteLabel: "Delete"}
			if itemState != nil {
				st = itemState(n)
			}
			writeItem(&b, st, now)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderItem writes a plain-text rendering of one note.
func RenderItem(w io.Writer, st ItemState, now time.Time) error {
	var b strings.Builder
	writeItem(&b, st, now)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeItem(b *strings.Builder, st ItemState, now time.Time) {
	fmt.Fprintf(b, "## %s", st.Note.Title)
	if st.Status != ItemIdle {
		fmt.Fprintf(b, " [%s]", st.DeleteLabel)
	}
	b.WriteString("\n")
	b.WriteString(st.Note.Content)
	if !strings.HasSuffix(st.Note.Content, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "Last updated: %s (%s) · id %s\n",
		TimeAgo(now, st.Note.LastUpdated),
		FormatDate(st.Note.LastUpdated, now.Location()),
		st.Note.ID,
	)
	if st.Error != "" {
		fmt.Fprintf(b, "Error: %s\n", st.Error)
	}
}
