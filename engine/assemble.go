package engine

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
	"reportauto/internal/errors"
)

// assemble renders the ordered outcomes into the primary report plus
// side artifacts. The report always leads with the dataset row count,
// then one section per step in recipe order, blank-row separated.
// Writing is fully deterministic: the same table and recipe produce
// byte-identical output.
func assemble(rec *recipe.Recipe, tbl *table.Table, outcomes []stepOutcome) (*Bundle, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	writeRow := func(row []string) error { return w.Write(row) }
	blank := func() error { return w.Write([]string{""}) }

	if err := writeRow([]string{"Total rows", strconv.Itoa(tbl.NumRows())}); err != nil {
		return nil, errors.IO("writing report", err)
	}

	for i := range outcomes {
		if err := blank(); err != nil {
			return nil, errors.IO("writing report", err)
		}
		section := outcomes[i].section
		if outcomes[i].err != nil {
			section = errorSection(&rec.Steps[i], outcomes[i].err)
		}
		if err := writeSection(writeRow, section); err != nil {
			return nil, errors.IO("writing report", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.IO("writing report", err)
	}

	bundle := &Bundle{Filename: rec.OutputFilename, Report: buf.Bytes()}

	if data, ok, err := correlationArtifact(outcomes); err != nil {
		return nil, err
	} else if ok {
		bundle.Artifacts = append(bundle.Artifacts, NamedArtifact{Name: "correlation_results.csv", Data: data})
	}
	if data, ok, err := crosstabArtifact(outcomes); err != nil {
		return nil, err
	} else if ok {
		bundle.Artifacts = append(bundle.Artifacts, NamedArtifact{Name: "crosstabs_output.csv", Data: data})
	}
	return bundle, nil
}

func writeSection(writeRow func([]string) error, s *SectionResult) error {
	if err := writeRow([]string{s.OutputName}); err != nil {
		return err
	}
	if err := writeRow(s.Header); err != nil {
		return err
	}
	for _, row := range s.Rows {
		if err := writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

// correlationArtifact concatenates every correlation step's rows under
// a single header, in step order.
func correlationArtifact(outcomes []stepOutcome) ([]byte, bool, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	found := false
	for i := range outcomes {
		a := outcomes[i].artifact
		if a == nil || a.kind != artifactCorrelation {
			continue
		}
		if !found {
			if err := w.Write(a.header); err != nil {
				return nil, false, errors.IO("writing correlation artifact", err)
			}
			found = true
		}
		for _, row := range a.rows {
			if err := w.Write(row); err != nil {
				return nil, false, errors.IO("writing correlation artifact", err)
			}
		}
	}
	if !found {
		return nil, false, nil
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, false, errors.IO("writing correlation artifact", err)
	}
	return buf.Bytes(), true, nil
}

// crosstabArtifact stacks each crosstab as a titled block, blank-row
// separated, since their headers differ per pairing.
func crosstabArtifact(outcomes []stepOutcome) ([]byte, bool, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	found := false
	for i := range outcomes {
		a := outcomes[i].artifact
		if a == nil || a.kind != artifactCrosstab {
			continue
		}
		if found {
			if err := w.Write([]string{""}); err != nil {
				return nil, false, errors.IO("writing crosstab artifact", err)
			}
		}
		found = true
		if err := w.Write([]string{a.title}); err != nil {
			return nil, false, errors.IO("writing crosstab artifact", err)
		}
		if err := w.Write(a.header); err != nil {
			return nil, false, errors.IO("writing crosstab artifact", err)
		}
		for _, row := range a.rows {
			if err := w.Write(row); err != nil {
				return nil, false, errors.IO("writing crosstab artifact", err)
			}
		}
	}
	if !found {
		return nil, false, nil
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, false, errors.IO("writing crosstab artifact", err)
	}
	return buf.Bytes(), true, nil
}
