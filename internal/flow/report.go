package flow

import (
	"context"
	"fmt"

	"github.com/iwvelando/company-valuation/internal/form"
	"github.com/iwvelando/company-valuation/internal/upload"
)

// MsgNoDocuments is shown when the documents step is submitted without a
// successfully uploaded file.
const MsgNoDocuments = "Upload at least one financial document"

func (f *Flow) reportStages() []*stage {
	company := &stage{
		screen:      ScreenReportCompany,
		title:       "Company",
		description: "Company details and valuation purpose",
		form:        f.newForm(form.ReportCompany),
	}
	documents := &stage{
		screen:      ScreenReportDocuments,
		title:       "Documents",
		description: "Upload financial statements",
		complete:    func() bool { return f.queue.Count(upload.StatusSuccess) > 0 },
		action:      func(ctx context.Context) error { return f.queue.Wait(ctx) },
		hintField:   FieldDocuments,
		hint:        MsgNoDocuments,
	}
	proj := &stage{
		screen:      ScreenReportProjection,
		title:       "Projection",
		description: "Five-year revenue projection",
		form:        f.newForm(form.Projection),
	}
	proj.complete = func() bool { return f.result != nil }
	proj.reset = func() { f.result = nil }
	proj.action = func(context.Context) error {
		result, err := f.deps.Calculator.ProjectInput(proj.form.Value(form.FieldBaseRevenue))
		if err != nil {
			proj.form.Fail(form.FieldBaseRevenue, "Base revenue must be a positive amount")
			return fmt.Errorf("projection failed: %w", err)
		}
		f.result = result
		return nil
	}
	review := &stage{
		screen:      ScreenReportReview,
		title:       "Review",
		description: "Confirm and generate the report",
		form:        f.newForm(form.Review),
	}

	return []*stage{company, documents, proj, review}
}

func (f *Flow) buildReport() Report {
	company := f.stages[0].form
	var docs []upload.Document
	for _, doc := range f.queue.List() {
		if doc.Status == upload.StatusSuccess {
			docs = append(docs, doc)
		}
	}
	return Report{
		Owner:       f.owner,
		CompanyName: company.Value(form.FieldCompanyName),
		Industry:    company.Value(form.FieldIndustry),
		FoundedYear: company.Value(form.FieldFoundedYear),
		Description: company.Value(form.FieldDescription),
		Purpose:     company.Value(form.FieldPurpose),
		Documents:   docs,
		Projection:  f.result,
		CreatedAt:   f.deps.Clock(),
	}
}
