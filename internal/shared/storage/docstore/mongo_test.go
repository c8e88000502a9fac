package docstore

import "testing"

func TestDatabaseFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{uri: "mongodb://localhost:27017/resumes", want: "resumes"},
		{uri: "mongodb://localhost:27017/resumes?retryWrites=true", want: "resumes"},
		{uri: "mongodb://localhost:27017", want: defaultDBName},
		{uri: "mongodb://localhost:27017/", want: defaultDBName},
		{uri: "::bad", want: defaultDBName},
	}
	for _, tt := range tests {
		if got := DatabaseFromURI(tt.uri); got != tt.want {
			t.Fatalf("DatabaseFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
