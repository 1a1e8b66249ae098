package ledger

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"

	"github.com/m3rciful/mediareq/internal/conversation"
	"github.com/m3rciful/mediareq/internal/media"
)

func TestFromSubmission(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	got := FromSubmission(conversation.Submission{
		UserID:    42,
		Candidate: media.Candidate{ID: 1396, Title: "Breaking Bad", Kind: media.Series},
		Seasons:   []int{1, 3},
		OK:        true,
		At:        at,
	})
	want := Entry{
		UserID:      42,
		MediaID:     1396,
		MediaType:   "tv",
		Title:       "Breaking Bad",
		Seasons:     pq.Int64Array{1, 3},
		OK:          true,
		RequestedAt: at.UTC(),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}

	movie := FromSubmission(conversation.Submission{Candidate: media.Candidate{Kind: media.Movie}})
	if movie.Seasons == nil || len(movie.Seasons) != 0 {
		t.Fatalf("movie seasons = %#v, want empty", movie.Seasons)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(Migrations, MigrationsDir)
	if err != nil {
		t.Fatal(err)
	}
	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Fatalf("up=%d down=%d", up, down)
	}
}
