package auth

import "testing"

func TestValidateEmail(t *testing.T) {
	cases := map[string]bool{
		"demo@example.com":       true,
		"first.last@shop.co.uk":  true,
		"a@b.c":                  true,
		"":                       false,
		"demo":                   false,
		"demo@example":           false,
		"@example.com":           false,
		"demo@.com":              false,
		"de mo@example.com":      false,
		"demo@exa@mple.com":      false,
		"demo@example.com ":      false,
		"de\u00a0mo@example.com": false,
		"demo@exa\u2028mple.com": false,
		"demo@example.\u3000com": false,
		"\ufeffdemo@example.com": false,
		"demo@example.com\v":     false,
		"josé@example.com":       true,
	}
	for email, want := range cases {
		if got := ValidateEmail(email); got != want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", email, got, want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	valid := []string{"Passw0rd!", "Abcdef1?", "xY9{zzzzzzz", `Qq1"qqqq`, "LONGlong12|", "Aa1!éééé"}
	for _, pw := range valid {
		if !ValidatePassword(pw) {
			t.Errorf("ValidatePassword(%q) = false, problems %v", pw, PasswordProblems(pw))
		}
	}

	invalid := map[string]int{
		"Pa0!":       1, // too short
		"password1!": 1, // no uppercase
		"PASSWORD1!": 1, // no lowercase
		"Password!!": 1, // no digit
		"Password12": 1, // no symbol
		"Password1-": 1, // '-' is not in the symbol set
		"":           5,
		"Aa1!éé":     1, // 6 characters in 8 bytes
	}
	for pw, n := range invalid {
		if ValidatePassword(pw) {
			t.Errorf("ValidatePassword(%q) = true", pw)
		}
		if got := len(PasswordProblems(pw)); got != n {
			t.Errorf("PasswordProblems(%q) = %d problems, want %d", pw, got, n)
		}
	}
}

func TestDemoUser(t *testing.T) {
	u := DemoUser("jane.doe@example.com", "Passw0rd!")
	if u.Username != "jane.doe" {
		t.Errorf("Username = %q", u.Username)
	}
	if u.Email != "jane.doe@example.com" || u.Password != "Passw0rd!" {
		t.Errorf("credentials not carried: %+v", u)
	}
	if u.ID != 1 || u.FullName() != "Demo User" {
		t.Errorf("unexpected demo identity: %+v", u)
	}
	if u.Address.Geolocation.Lat != "40.7128" || u.Address.Geolocation.Long != "-74.0060" {
		t.Errorf("geolocation = %+v", u.Address.Geolocation)
	}
}
