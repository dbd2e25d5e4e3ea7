package institution

import "testing"

var testTable = []Institution{
	{ID: "hdfc", DisplayName: "HDFC Bank", Kind: KindBank, Country: "IN",
		SupportedAccountKinds: []AccountKind{AccountSavings, AccountChecking, AccountCreditCard},
		ProviderID:            ProviderSetu, Active: true},
	{ID: "sbi", DisplayName: "State Bank of India", Kind: KindBank, Country: "IN",
		SupportedAccountKinds: []AccountKind{AccountSavings},
		ProviderID:            ProviderSetu, Active: true},
	{ID: "closedbank", DisplayName: "Closed Bank", Kind: KindBank, Country: "IN",
		SupportedAccountKinds: []AccountKind{AccountSavings}, Active: false},
	{ID: "yes", DisplayName: "Yes Bank", Kind: KindBank, Country: "IN",
		SupportedAccountKinds: []AccountKind{AccountCreditCard},
		ProviderID:            ProviderYodlee, Active: true},
	{ID: "chase", DisplayName: "Chase", Kind: KindBank, Country: "US",
		SupportedAccountKinds: []AccountKind{AccountChecking}, Active: true},
}

func TestListByCountry(t *testing.T) {
	r := NewRegistryWith(testTable)

	got := r.ListByCountry("IN")
	want := []string{"hdfc", "sbi", "yes"} // table order, inactive excluded
	if len(got) != len(want) {
		t.Fatalf("ListByCountry(IN) returned %d institutions, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("ListByCountry(IN)[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}

	if got := r.ListByCountry("in"); len(got) != 3 {
		t.Errorf("country match should be case-insensitive, got %d results", len(got))
	}
	if got := r.ListByCountry("BR"); len(got) != 0 {
		t.Errorf("ListByCountry(BR) = %d results, want 0", len(got))
	}
}

func TestSearch(t *testing.T) {
	r := NewRegistryWith(testTable)

	tests := []struct {
		name    string
		query   string
		country string
		wantIDs []string
	}{
		{"empty query returns country list", "", "IN", []string{"hdfc", "sbi", "yes"}},
		{"matches id", "hdfc", "IN", []string{"hdfc"}},
		{"matches display name", "state bank", "IN", []string{"sbi"}},
		{"case insensitive", "HDFC", "IN", []string{"hdfc"}},
		{"substring", "bank", "IN", []string{"hdfc", "sbi", "yes"}},
		{"scoped to country", "chase", "IN", nil},
		{"no match", "doesnotexist", "IN", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Search(tt.query, tt.country)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Search(%q, %q) returned %d results, want %d",
					tt.query, tt.country, len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("Search(%q, %q)[%d].ID = %q, want %q",
						tt.query, tt.country, i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFilterByAccountKind(t *testing.T) {
	r := NewRegistryWith(testTable)
	list := r.ListByCountry("IN")

	got := FilterByAccountKind(list, AccountCreditCard)
	want := []string{"hdfc", "yes"}
	if len(got) != len(want) {
		t.Fatalf("FilterByAccountKind returned %d results, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("FilterByAccountKind[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}

	if got := FilterByAccountKind(list, AccountLoan); len(got) != 0 {
		t.Errorf("FilterByAccountKind(loan) = %d results, want 0", len(got))
	}
}

func TestGet(t *testing.T) {
	r := NewRegistryWith(testTable)

	inst, ok := r.Get("closedbank")
	if !ok {
		t.Fatal("Get should find inactive institutions")
	}
	if inst.Active {
		t.Error("closedbank should be inactive")
	}

	if _, ok := r.Get("doesnotexist"); ok {
		t.Error("Get(doesnotexist) should return ok=false")
	}
}

func TestDefaultTable(t *testing.T) {
	r := NewRegistry()

	seen := make(map[string]bool)
	for _, inst := range r.institutions {
		if seen[inst.ID] {
			t.Errorf("duplicate institution id %q", inst.ID)
		}
		seen[inst.ID] = true
		if inst.DisplayName == "" {
			t.Errorf("institution %q has empty display name", inst.ID)
		}
		if len(inst.SupportedAccountKinds) == 0 {
			t.Errorf("institution %q has no supported account kinds", inst.ID)
		}
	}

	if got := r.ListByCountry("IN"); len(got) == 0 {
		t.Error("default table should contain active IN institutions")
	}
}
