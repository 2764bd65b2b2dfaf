package domain

import "testing"

func TestProfileOf(t *testing.T) {
	tests := []struct {
		name string
		user *AuthUser
		want Profile
	}{
		{
			name: "full user",
			user: &AuthUser{FirstName: "Sara", LastName: "Moradi", Email: "sara@example.com"},
			want: Profile{Initials: "SM", FullName: "Sara Moradi", Username: "@sara", Email: "sara@example.com"},
		},
		{
			name: "email only",
			user: &AuthUser{Email: "omid@example.com"},
			want: Profile{Initials: "O", FullName: "Guest User", Username: "@omid", Email: "omid@example.com"},
		},
		{
			name: "non-latin name",
			user: &AuthUser{FirstName: "نرگس", LastName: "محمدی", Email: "narges@example.com"},
			want: Profile{Initials: "نم", FullName: "نرگس محمدی", Username: "@narges", Email: "narges@example.com"},
		},
		{
			name: "nil user",
			user: nil,
			want: Profile{Initials: "G", FullName: "Guest User", Username: "@guest", Email: "not signed in"},
		},
		{
			name: "whitespace names",
			user: &AuthUser{FirstName: "  ", LastName: " ", Email: ""},
			want: Profile{Initials: "G", FullName: "Guest User", Username: "@guest", Email: "not signed in"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProfileOf(tt.user); got != tt.want {
				t.Errorf("ProfileOf() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMediaIDFromItem(t *testing.T) {
	if got := MediaIDFromItem(map[string]any{"mediaId": " m1 "}); got != "m1" {
		t.Errorf("top-level id = %q, want m1", got)
	}
	nested := map[string]any{"media": map[string]any{"mediaId": "m2"}}
	if got := MediaIDFromItem(nested); got != "m2" {
		t.Errorf("nested id = %q, want m2", got)
	}
	if got := MediaIDFromItem("just a string"); got != "" {
		t.Errorf("non-object item = %q, want empty", got)
	}
	if got := MediaIDFromItem(map[string]any{"title": "no id"}); got != "" {
		t.Errorf("id-less item = %q, want empty", got)
	}
}

func TestLabelFallsBackToAction(t *testing.T) {
	if got := Label(ActionPopular); got != "Popular" {
		t.Errorf("Label(popular) = %q", got)
	}
	if got := Label(Action("mystery")); got != "mystery" {
		t.Errorf("Label(mystery) = %q", got)
	}
	if got := SectionTitle(Action("mystery")); got != "Items" {
		t.Errorf("SectionTitle(mystery) = %q", got)
	}
}
