package sink

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/okian/proteams/internal/domain/model"
)

const yamlIndent = 2

type yamlSink struct {
	w io.Writer
}

// Emit writes reports as a YAML list. An empty report is written as [].
func (s *yamlSink) Emit(ctx context.Context, reports []model.TeamReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if reports == nil {
		reports = []model.TeamReport{}
	}

	enc := yaml.NewEncoder(s.w)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("%w: yaml: %w", ErrEncode, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: yaml close: %w", ErrEncode, err)
	}
	return nil
}
