package validation

import (
	"strings"
	"testing"
	"time"
)

func validIntake() IntakeRequest {
	return IntakeRequest{
		BusinessName:  "Acme Web Co",
		Industry:      "Technology",
		WebsiteType:   "BUSINESS",
		Features:      []string{"Responsive Design", "SEO Optimization"},
		NumberOfPages: 5,
		Deadline:      time.Now().UTC().AddDate(0, 1, 0).Format(DeadlineLayout),
		Budget:        3000,
	}
}

func TestCheckIntakeValid(t *testing.T) {
	if fe := Check(validIntake()); fe != nil {
		t.Fatalf("expected no errors, got %v", fe)
	}
}

func TestCheckIntakeFieldRules(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*IntakeRequest)
		wantField string
	}{
		{"short business name", func(r *IntakeRequest) { r.BusinessName = "A" }, "business_name"},
		{"long business name", func(r *IntakeRequest) { r.BusinessName = strings.Repeat("x", 101) }, "business_name"},
		{"unknown website type", func(r *IntakeRequest) { r.WebsiteType = "SPACESHIP" }, "website_type"},
		{"empty features", func(r *IntakeRequest) { r.Features = []string{} }, "features"},
		{"too many features", func(r *IntakeRequest) { r.Features = make([]string, 21) }, "features"},
		{"zero pages", func(r *IntakeRequest) { r.NumberOfPages = 0 }, "number_of_pages"},
		{"too many pages", func(r *IntakeRequest) { r.NumberOfPages = 101 }, "number_of_pages"},
		{"budget below floor", func(r *IntakeRequest) { r.Budget = 100 }, "budget"},
		{"budget above ceiling", func(r *IntakeRequest) { r.Budget = 2000000 }, "budget"},
		{"past deadline", func(r *IntakeRequest) { r.Deadline = "2020-01-01" }, "deadline"},
		{"garbage deadline", func(r *IntakeRequest) { r.Deadline = "next tuesday" }, "deadline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validIntake()
			tt.mutate(&req)
			fe := Check(req)
			if fe == nil {
				t.Fatal("expected a validation error, got none")
			}
			if _, ok := fe[tt.wantField]; !ok {
				t.Errorf("expected error on %q, got %v", tt.wantField, fe)
			}
		})
	}
}

// All invalid fields must be reported in one pass, not just the first.
func TestCheckReportsEveryViolation(t *testing.T) {
	req := validIntake()
	req.BusinessName = ""
	req.NumberOfPages = 0
	req.Features = nil
	req.Deadline = "2019-12-31"
	fe := Check(req)
	for _, field := range []string{"business_name", "number_of_pages", "features", "deadline"} {
		if _, ok := fe[field]; !ok {
			t.Errorf("missing error for %q in %v", field, fe)
		}
	}
}

func TestCheckStatusUpdate(t *testing.T) {
	if fe := Check(StatusUpdateRequest{Status: "COMPLETED"}); fe != nil {
		t.Fatalf("expected no errors, got %v", fe)
	}
	fe := Check(StatusUpdateRequest{Status: "ARCHIVED"})
	if _, ok := fe["status"]; !ok {
		t.Fatalf("expected error on status, got %v", fe)
	}
}

func TestCheckRegister(t *testing.T) {
	ok := RegisterRequest{Email: "john@example.com", Password: "hunter2hunter2", FirstName: "John", LastName: "Doe"}
	if fe := Check(ok); fe != nil {
		t.Fatalf("expected no errors, got %v", fe)
	}
	bad := RegisterRequest{Email: "not-an-email", Password: "short", FirstName: "J", LastName: ""}
	fe := Check(bad)
	for _, field := range []string{"email", "password", "first_name", "last_name"} {
		if _, ok := fe[field]; !ok {
			t.Errorf("missing error for %q in %v", field, fe)
		}
	}
}
