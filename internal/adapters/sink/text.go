package sink

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/okian/proteams/internal/domain/model"
)

type textSink struct {
	w io.Writer
}

// Emit writes a numbered listing, one block per team.
func (s *textSink) Emit(ctx context.Context, reports []model.TeamReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(s.w, 0, 0, 2, ' ', 0)
	if len(reports) == 0 {
		if _, err := fmt.Fprintln(tw, "no teams ranked"); err != nil {
			return fmt.Errorf("%w: text: %w", ErrEncode, err)
		}
		return flush(tw)
	}

	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(tw); err != nil {
				return fmt.Errorf("%w: text: %w", ErrEncode, err)
			}
		}
		if err := writeTeam(tw, i+1, r); err != nil {
			return fmt.Errorf("%w: text: %w", ErrEncode, err)
		}
	}
	return flush(tw)
}

func writeTeam(w io.Writer, rank int, r model.TeamReport) error {
	name := r.Name
	if name == "" {
		name = "(unnamed)"
	}
	if _, err := fmt.Fprintf(w, "%d. %s (team %d)\n", rank, name, r.TeamID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "   experience\t%d s\twins\t%d\tlosses\t%d\trating\t%.2f\n",
		r.Experience, r.Wins, r.Losses, r.Rating); err != nil {
		return err
	}
	for _, p := range r.Players {
		country := p.CountryCode
		if country == "" {
			country = "--"
		}
		if _, err := fmt.Fprintf(w, "   - %s\t[%s]\t%d s\n", p.PersonaName, country, p.Experience); err != nil {
			return err
		}
	}
	return nil
}

func flush(tw *tabwriter.Writer) error {
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("%w: text flush: %w", ErrEncode, err)
	}
	return nil
}
