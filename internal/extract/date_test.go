package extract

import "testing"

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"dash", "Ellingham_Hospital_Admission_15-05-2016", "15-05-2016", true},
		{"slash", "letter of 3/7/2018", "03-07-2018", true},
		{"dots", "minutes 01.12.2015", "01-12-2015", true},
		{"two digit year", "note 5-6-17", "05-06-2017", true},
		{"two digit year last century", "note 5-6-98", "05-06-1998", true},
		{"iso", "export_2020-02-29_final", "29-02-2020", true},
		{"day month name", "Hearing 12 September 2019", "12-09-2019", true},
		{"day month name underscores", "Hearing_1st_Feb_2022", "01-02-2022", true},
		{"month name day", "Sent on March 4, 2021", "04-03-2021", true},
		{"invalid month skipped", "ref 31-13-2020 then 02-03-2020", "02-03-2020", true},
		{"day past month end", "letter_31-02-2016", "", false},
		{"not a leap year", "letter_29-02-2015", "", false},
		{"impossible date skipped", "letter_31-02-2016 then 15-05-2016", "15-05-2016", true},
		{"day zero", "ref 0-05-2016", "", false},
		{"leap day", "letter_29-02-2016", "29-02-2016", true},
		{"no date", "Nnamdi_Okpala_Not_Homeless", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDate(tt.text)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ExtractDate(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey("15-05-2016"); got != "2016-05" {
		t.Errorf("Expected 2016-05, got %q", got)
	}
	if got := MonthKey("2016"); got != "" {
		t.Errorf("Expected empty key for a malformed date, got %q", got)
	}
}
