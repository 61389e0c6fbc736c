package vehicle

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseRegistration(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "compact", raw: "AB12CDE", want: "AB12CDE"},
		{name: "with space", raw: "AB12 CDE", want: "AB12CDE"},
		{name: "lowercase", raw: "ab12cde", want: "AB12CDE"},
		{name: "surrounding whitespace", raw: "  ab12 cde \n", want: "AB12CDE"},
		{name: "two spaces", raw: "AB12  CDE", wantErr: true},
		{name: "too short", raw: "AB1CDE", wantErr: true},
		{name: "digits swapped", raw: "1234CDE", wantErr: true},
		{name: "extra letter", raw: "AB12CDEF", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "sentinel", raw: "5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRegistration(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRegistration)
				require.False(t, ValidRegistration(tt.raw))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.True(t, ValidRegistration(tt.raw))
		})
	}
}

func TestParseRegistration_CanonicalIsStable(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		raw := rapid.StringMatching(`[A-Za-z]{2}[0-9]{2} ?[A-Za-z]{3}`).Draw(r, "raw")

		key, err := ParseRegistration(raw)
		if err != nil {
			r.Fatalf("valid plate %q rejected: %v", raw, err)
		}
		again, err := ParseRegistration(key)
		if err != nil {
			r.Fatalf("canonical key %q rejected: %v", key, err)
		}
		if again != key {
			r.Fatalf("canonical form not stable: %q -> %q", key, again)
		}
		if len(key) != 7 {
			r.Fatalf("canonical key %q should be 7 characters", key)
		}
	})
}

func TestCapitalize(t *testing.T) {
	require.Equal(t, "Toyota", Capitalize("toyota"))
	require.Equal(t, "Toyota", Capitalize("  TOYOTA "))
	require.Equal(t, "Land rover", Capitalize("LAND ROVER"))
	require.Equal(t, "Škoda", Capitalize("škoda"))
	require.Equal(t, "", Capitalize("   "))
}

func TestParseDetail(t *testing.T) {
	got, err := ParseDetail("corolla")
	require.NoError(t, err)
	require.Equal(t, "Corolla", got)

	_, err = ParseDetail(" \t ")
	require.ErrorIs(t, err, ErrEmptyField)
}

func TestParseYear(t *testing.T) {
	for _, ok := range []string{"2020", " 1999 ", "0001"} {
		_, err := ParseYear(ok)
		require.NoError(t, err, ok)
	}
	for _, bad := range []string{"20", "20201", "20a0", "", "２０２０"} {
		_, err := ParseYear(bad)
		require.ErrorIs(t, err, ErrInvalidYear, bad)
	}
}

func TestNew(t *testing.T) {
	v, err := New("toyota", "COROLLA", "2020")
	require.NoError(t, err)
	require.Equal(t, Vehicle{Make: "Toyota", Model: "Corolla", Year: "2020"}, v)

	_, err = New("", "Corolla", "2020")
	require.ErrorIs(t, err, ErrEmptyField)
	require.Contains(t, err.Error(), "make")

	_, err = New("Toyota", "", "2020")
	require.ErrorIs(t, err, ErrEmptyField)
	require.Contains(t, err.Error(), "model")

	_, err = New("Toyota", "Corolla", "20")
	require.ErrorIs(t, err, ErrInvalidYear)
}
