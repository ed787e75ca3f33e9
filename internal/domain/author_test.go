package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorFullName(t *testing.T) {
	t.Parallel()

	author := Author{FirstName: "Ursula", LastName: "Le Guin"}
	assert.Equal(t, "Ursula Le Guin", author.FullName())
}

func TestAuthorAge(t *testing.T) {
	t.Parallel()

	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		birth time.Time
		now   time.Time
		want  int
	}{
		{
			name:  "birthday already passed this year",
			birth: date(1980, time.March, 15),
			now:   date(2026, time.September, 1),
			want:  46,
		},
		{
			name:  "birthday later this year",
			birth: date(1980, time.December, 25),
			now:   date(2026, time.September, 1),
			want:  45,
		},
		{
			name:  "birthday today",
			birth: date(1980, time.September, 1),
			now:   date(2026, time.September, 1),
			want:  46,
		},
		{
			name:  "day before birthday",
			birth: date(1980, time.September, 2),
			now:   date(2026, time.September, 1),
			want:  45,
		},
		{
			name:  "leap day birth in a non-leap year",
			birth: date(2000, time.February, 29),
			now:   date(2025, time.February, 28),
			want:  24,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			birth := tt.birth
			author := Author{BirthDate: &birth}
			age := author.Age(tt.now)
			require.NotNil(t, age)
			assert.Equal(t, tt.want, *age)
		})
	}

	t.Run("nil without birth date", func(t *testing.T) {
		t.Parallel()
		author := Author{}
		assert.Nil(t, author.Age(date(2026, time.September, 1)))
	})
}
