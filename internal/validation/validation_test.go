package validation

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		in      string
		valid   bool
		message string
	}{
		{"a@b.com", true, ""},
		{"  ann@x.com  ", true, ""},
		{"bad", false, "Please enter a valid email address"},
		{"a b@c.com", false, "Please enter a valid email address"},
		{"a@b", false, "Please enter a valid email address"},
		{"", false, "Email is required"},
		{"   ", false, "Email is required"},
	}
	for _, tt := range tests {
		got := Email(tt.in)
		if got.IsValid != tt.valid || got.Message != tt.message {
			t.Errorf("Email(%q) = %+v, want valid=%v message=%q", tt.in, got, tt.valid, tt.message)
		}
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		in      string
		valid   bool
		message string
	}{
		{"password1", true, ""},
		{"12345678", true, ""},
		{"short", false, "Password must be at least 8 characters long"},
		{"  1234567  ", false, "Password must be at least 8 characters long"},
		{"", false, "Password cannot be empty"},
		{"        ", false, "Password cannot be empty"},
	}
	for _, tt := range tests {
		got := Password(tt.in)
		if got.IsValid != tt.valid || got.Message != tt.message {
			t.Errorf("Password(%q) = %+v, want valid=%v message=%q", tt.in, got, tt.valid, tt.message)
		}
	}
}

func TestConfirmPassword(t *testing.T) {
	if got := ConfirmPassword("x", "y"); got.IsValid || got.Message != "Passwords do not match" {
		t.Errorf("ConfirmPassword(x, y) = %+v", got)
	}
	if got := ConfirmPassword("password1", ""); got.IsValid || got.Message != "Please confirm your password" {
		t.Errorf("ConfirmPassword(_, empty) = %+v", got)
	}
	if got := ConfirmPassword("password1", "password1"); !got.IsValid {
		t.Errorf("ConfirmPassword(match) = %+v", got)
	}
	if got := ConfirmPassword("Password1", "password1"); got.IsValid {
		t.Error("ConfirmPassword must compare case-sensitively")
	}
}

func TestName(t *testing.T) {
	if got := Name("A"); got.IsValid || got.Message != "Name must be at least 2 characters long" {
		t.Errorf("Name(A) = %+v", got)
	}
	if got := Name(" "); got.IsValid || got.Message != "Name is required" {
		t.Errorf("Name(blank) = %+v", got)
	}
	if got := Name("Ann"); !got.IsValid {
		t.Errorf("Name(Ann) = %+v", got)
	}
	if got := Name("Zoë"); !got.IsValid {
		t.Errorf("Name(Zoë) = %+v", got)
	}
}

func TestStatusAndTitle(t *testing.T) {
	for _, s := range []string{"", "open", "in_progress", "closed"} {
		if !Status(s).IsValid {
			t.Errorf("Status(%q) should be valid", s)
		}
	}
	if Status("resolved").IsValid {
		t.Error("Status(resolved) should be invalid")
	}
	if Title("   ").IsValid {
		t.Error("blank title should be invalid")
	}
}

func TestValidateField_UnknownFieldAlwaysValid(t *testing.T) {
	got := ValidateField(Field("favouriteColour"), "", nil)
	if !got.IsValid || got.Message != "" {
		t.Errorf("unknown field = %+v, want valid", got)
	}
}

func TestValidateField_ConfirmUsesSibling(t *testing.T) {
	form := Form{FieldPassword: "password1"}
	if got := ValidateField(FieldConfirmPassword, "password2", form); got.IsValid {
		t.Error("confirmPassword should fail against a different sibling password")
	}
	if got := ValidateField(FieldConfirmPassword, "password1", form); !got.IsValid {
		t.Errorf("confirmPassword = %+v, want valid", got)
	}
}

func TestValidateForm(t *testing.T) {
	form := Form{
		FieldName:            "Ann",
		FieldEmail:           "bad",
		FieldPassword:        "password1",
		FieldConfirmPassword: "password2",
	}
	failures := ValidateForm(form, FieldName, FieldEmail, FieldPassword, FieldConfirmPassword)
	if len(failures) != 2 {
		t.Fatalf("failures = %v, want 2 entries", failures)
	}
	if failures[FieldEmail] != "Please enter a valid email address" {
		t.Errorf("email failure = %q", failures[FieldEmail])
	}
	if failures[FieldConfirmPassword] != "Passwords do not match" {
		t.Errorf("confirmPassword failure = %q", failures[FieldConfirmPassword])
	}
	details := Details(failures)
	if details["email"] != "Please enter a valid email address" {
		t.Errorf("Details() = %v", details)
	}
}
