package dashboard

import (
	"errors"
	"strings"

	"github.com/KaramelBytes/dashloom-cli/internal/analysis"
	"github.com/KaramelBytes/dashloom-cli/internal/utils"
)

// Pipeline runs analyze -> normalize -> assemble over CSV text. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	opt analysis.Options
	asm *Assembler
	log *utils.Logger
}

// NewPipeline returns a Pipeline parsing CSV with opt. A nil logger discards output.
func NewPipeline(opt analysis.Options, log *utils.Logger) *Pipeline {
	if log == nil {
		log = utils.NopLogger()
	}
	return &Pipeline{opt: opt, asm: NewAssembler(log), log: log}
}

// Analyze classifies the CSV columns and builds the recommendation table.
func (p *Pipeline) Analyze(csv string) (*analysis.Report, *analysis.Dataset, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil, newError(KindInvalidInput, "analyze", "no data provided", nil)
	}
	rep, ds, err := analysis.Analyze(csv, p.opt)
	if err != nil {
		if errors.Is(err, analysis.ErrInvalidCSV) {
			return nil, nil, newError(KindInvalidInput, "analyze", "could not parse CSV", err)
		}
		return nil, nil, newError(KindInvalidInput, "analyze", "", err)
	}
	cls := rep.Classification
	p.log.Debug("classified %d rows: numeric=%v categorical=%v date=%v", rep.Rows, cls.Numeric, cls.Categorical, cls.Date)
	return rep, ds, nil
}

// Build analyzes csv and assembles a plan for the normalized selection.
func (p *Pipeline) Build(id, csv string, requested []string) (*Plan, *analysis.Report, error) {
	rep, ds, err := p.Analyze(csv)
	if err != nil {
		return nil, nil, err
	}
	plan, err := p.asm.Assemble(id, NormalizeSelection(requested), rep.Recommendations, rep.Classification, ds)
	if err != nil {
		return nil, rep, err
	}
	return plan, rep, nil
}
