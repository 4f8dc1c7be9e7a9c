package extract

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/ppiankov/casedex/internal/model"
)

func mustExtract(t *testing.T, text, filename string) *model.ExtractionResult {
	t.Helper()
	res, err := NewExtractor(nil).Extract(text, filename)
	if err != nil {
		t.Fatalf("Expected no error for %q, got %v", filename, err)
	}
	return res
}

func TestExtract_EllinghamAdmission(t *testing.T) {
	res := mustExtract(t, "", "Ellingham_Hospital_Admission_15-05-2016.pdf")

	for _, tag := range []string{"ellingham", "mental_health"} {
		if !slices.Contains(res.Tags, tag) {
			t.Errorf("Expected tag %q, got %v", tag, res.Tags)
		}
	}
	if res.Date != "15-05-2016" {
		t.Errorf("Expected date 15-05-2016, got %q", res.Date)
	}
	if res.Location != "ellingham" {
		t.Errorf("Expected location ellingham, got %q", res.Location)
	}
	if res.Category != model.CategoryMentalHealth {
		t.Errorf("Expected category %s, got %s", model.CategoryMentalHealth, res.Category)
	}
	if res.NormalizedName != "ellingham hospital admission 15 05 2016" {
		t.Errorf("Unexpected normalized name %q", res.NormalizedName)
	}
}

func TestExtract_NotHomeless(t *testing.T) {
	res := mustExtract(t, "", "Nnamdi_Okpala_Not_Homeless.pdf")

	if !slices.Contains(res.Tags, "housing_denial") {
		t.Errorf("Expected housing_denial, got %v", res.Tags)
	}
	if res.Category != model.CategoryHousing {
		t.Errorf("Expected category %s, got %s", model.CategoryHousing, res.Category)
	}
	if res.Date != "" || res.Location != "" {
		t.Errorf("Expected no date or location, got %q / %q", res.Date, res.Location)
	}
}

func TestExtract_CategoryPriority(t *testing.T) {
	// negligence (system_failure) and discrimination (legal) both match;
	// legal ranks higher
	res := mustExtract(t, "", "Negligence_and_Discrimination_Letter.pdf")

	want := []string{"discrimination", "negligence"}
	if !reflect.DeepEqual(res.Tags, want) {
		t.Errorf("Expected tags %v, got %v", want, res.Tags)
	}
	if res.Category != model.CategoryLegal {
		t.Errorf("Expected category %s, got %s", model.CategoryLegal, res.Category)
	}
}

func TestExtract_Uncategorized(t *testing.T) {
	res := mustExtract(t, "", "scan_0001.pdf")

	if len(res.Tags) != 0 {
		t.Errorf("Expected no tags, got %v", res.Tags)
	}
	if res.Category != model.CategoryUncategorized {
		t.Errorf("Expected category %s, got %s", model.CategoryUncategorized, res.Category)
	}
}

func TestExtract_CriticalEvidence(t *testing.T) {
	res := mustExtract(t, "", "Court_Judgment_2019-03-04.pdf")

	if !slices.Contains(res.Tags, model.TagCriticalEvidence) {
		t.Errorf("Expected %s, got %v", model.TagCriticalEvidence, res.Tags)
	}
	if res.Date != "04-03-2019" {
		t.Errorf("Expected date 04-03-2019, got %q", res.Date)
	}
	if res.Category != model.CategoryEvidence {
		t.Errorf("Expected category %s, got %s", model.CategoryEvidence, res.Category)
	}
}

func TestExtract_BodyText(t *testing.T) {
	body := "Accommodation was refused by the council. Letter dated 3rd March 2021 about a psychiatric review."
	res := mustExtract(t, body, "letter.txt")

	for _, tag := range []string{"housing_denial", "mental_health"} {
		if !slices.Contains(res.Tags, tag) {
			t.Errorf("Expected tag %q from body text, got %v", tag, res.Tags)
		}
	}
	if res.Date != "03-03-2021" {
		t.Errorf("Expected date 03-03-2021, got %q", res.Date)
	}
	if res.Location != "thurrock" {
		t.Errorf("Expected location thurrock, got %q", res.Location)
	}
}

func TestExtract_FilenameDateWinsOverBody(t *testing.T) {
	res := mustExtract(t, "written on 01/02/2003", "note_10-11-2012.txt")
	if res.Date != "10-11-2012" {
		t.Errorf("Expected filename date 10-11-2012, got %q", res.Date)
	}
}

func TestExtract_EmptyFilename(t *testing.T) {
	e := NewExtractor(nil)

	for _, name := range []string{"", "   "} {
		_, err := e.Extract("some text", name)
		if !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for %q, got %v", name, err)
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	a := mustExtract(t, "body about section 202", "Review_Request_01-02-2020.pdf")
	b := mustExtract(t, "body about section 202", "Review_Request_01-02-2020.pdf")

	if !reflect.DeepEqual(a, b) {
		t.Errorf("Expected identical results, got %+v and %+v", a, b)
	}
}

func TestExtractDocument_Overrides(t *testing.T) {
	e := NewExtractor(nil)

	res, err := e.ExtractDocument(Input{
		Filename:     "Nnamdi_Okpala_Not_Homeless.pdf",
		OverrideTags: []string{"Compensation", "Key Witness", ""},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, tag := range []string{"housing_denial", "compensation", "key_witness"} {
		if !slices.Contains(res.Tags, tag) {
			t.Errorf("Expected tag %q, got %v", tag, res.Tags)
		}
	}
	if res.Category != model.CategoryHousing {
		t.Errorf("Expected category %s, got %s", model.CategoryHousing, res.Category)
	}
}

func TestDocumentID(t *testing.T) {
	byName := DocumentID(Input{Filename: "a.pdf"})
	if len(byName) != 12 {
		t.Errorf("Expected 12 character id, got %q", byName)
	}
	if byName != DocumentID(Input{Filename: "a.pdf"}) {
		t.Error("Expected stable id for the same filename")
	}

	byText := DocumentID(Input{Filename: "a.pdf", Text: "hello"})
	if byText == byName {
		t.Error("Expected text to take precedence over filename")
	}
	if byText != DocumentID(Input{Filename: "b.pdf", Text: "hello"}) {
		t.Error("Expected id from text to ignore the filename")
	}

	byContent := DocumentID(Input{Filename: "a.pdf", Text: "hello", Content: []byte("%PDF-1.7")})
	if byContent == byText {
		t.Error("Expected content to take precedence over text")
	}
}

func TestNormalizeFilename(t *testing.T) {
	tests := map[string]string{
		"Ellingham_Hospital-Admission.pdf": "ellingham hospital admission",
		"dir/Sub  Folder__Name.PDF":        "sub folder name",
		"letter_15.05.2016":                "letter 15 05 2016",
		"S.202 Review.pdf":                 "s 202 review",
	}
	for in, want := range tests {
		if got := NormalizeFilename(in); got != want {
			t.Errorf("NormalizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
