package fixed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// ----------------------------------------------------------------------------
// Numbers
// ----------------------------------------------------------------------------

func TestParse_Numbers(t *testing.T) {
	tests := []struct {
		name    string
		locale  language.Tag
		typ     ColumnType
		input   string
		want    any
		wantErr bool
	}{
		{name: "short", locale: language.AmericanEnglish, typ: Short, input: "1997", want: int16(1997)},
		{name: "short negative", locale: language.AmericanEnglish, typ: Short, input: "-32768", want: int16(-32768)},
		{name: "short overflow", locale: language.AmericanEnglish, typ: Short, input: "32768", wantErr: true},
		{name: "integer", locale: language.AmericanEnglish, typ: Integer, input: "+40000", want: int32(40000)},
		{name: "integer grouped", locale: language.AmericanEnglish, typ: Integer, input: "1,234,567", want: int32(1234567)},
		{name: "integer rejects decimals", locale: language.AmericanEnglish, typ: Integer, input: "12.5", wantErr: true},
		{name: "long", locale: language.AmericanEnglish, typ: Long, input: "3000000000", want: int64(3000000000)},
		{name: "double", locale: language.AmericanEnglish, typ: Double, input: "1,234.5", want: 1234.5},
		{name: "double exponent", locale: language.AmericanEnglish, typ: Double, input: "1.5e3", want: 1500.0},
		{name: "double leading point", locale: language.AmericanEnglish, typ: Double, input: ".25", want: 0.25},
		{name: "float", locale: language.AmericanEnglish, typ: Float, input: "2.5", want: float32(2.5)},
		{name: "text is not a number", locale: language.AmericanEnglish, typ: Double, input: "abc", wantErr: true},
		{name: "german decimal comma", locale: language.German, typ: Double, input: "1.234,5", want: 1234.5},
		{name: "german integer grouping", locale: language.German, typ: Integer, input: "1.234", want: int32(1234)},
		{name: "swiss apostrophe grouping", locale: language.MustParse("de-CH"), typ: Double, input: "1'234.5", want: 1234.5},
		{name: "french space grouping", locale: language.French, typ: Double, input: "1 234,5", want: 1234.5},
		{name: "french no-break space grouping", locale: language.French, typ: Integer, input: "1\u00a0234", want: int32(1234)},
		{name: "french rejects point", locale: language.French, typ: Double, input: "1.5", wantErr: true},
		{name: "english rejects space grouping", locale: language.AmericanEnglish, typ: Integer, input: "1 234", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewTypeParser(tt.locale, DateLayouts{})
			got, err := p.Parse(tt.typ, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				require.False(t, p.CanParse(tt.typ, tt.input))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.True(t, p.CanParse(tt.typ, tt.input))
		})
	}
}

func TestCanParse_Float(t *testing.T) {
	p := NewTypeParser(language.AmericanEnglish, DateLayouts{})
	require.True(t, p.CanParse(Float, "4799"))
	require.True(t, p.CanParse(Float, "0.1"))
	require.False(t, p.CanParse(Float, "16777217"))
	require.False(t, p.CanParse(Float, "3.141592653589793"))
	require.False(t, p.CanParse(Float, "1e39"))
}

// ----------------------------------------------------------------------------
// Booleans
// ----------------------------------------------------------------------------

func TestParse_Booleans(t *testing.T) {
	p := NewTypeParser(language.AmericanEnglish, DateLayouts{})

	for _, s := range []string{"true", "TRUE", "t", "Yes", "y"} {
		v, err := p.Parse(Boolean, s)
		require.NoError(t, err, s)
		require.Equal(t, true, v, s)
		require.True(t, p.CanParse(Boolean, s), s)
	}
	for _, s := range []string{"false", "F", "no", "N"} {
		v, err := p.Parse(Boolean, s)
		require.NoError(t, err, s)
		require.Equal(t, false, v, s)
	}

	// Digits convert when declared but never drive detection.
	v, err := p.Parse(Boolean, "1")
	require.NoError(t, err)
	require.Equal(t, true, v)
	require.False(t, p.CanParse(Boolean, "1"))

	_, err = p.Parse(Boolean, "maybe")
	require.Error(t, err)
}

// ----------------------------------------------------------------------------
// Dates and times
// ----------------------------------------------------------------------------

func TestParse_Dates(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024/01/15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"01/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"Jan 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"15-Mar-2021", time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"20240115", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"1/5/24", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"1/5/99", time.Date(1999, 1, 5, 0, 0, 0, 0, time.UTC)},
	}

	p := NewTypeParser(language.AmericanEnglish, DateLayouts{})
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := p.Parse(LocalDate, tt.input)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got.(time.Time)), "got %v", got)
		})
	}

	_, err := p.Parse(LocalDate, "2024-13-45")
	require.Error(t, err)
}

func TestParse_TimesAndDateTimes(t *testing.T) {
	p := NewTypeParser(language.AmericanEnglish, DateLayouts{})

	v, err := p.Parse(LocalTime, "3:04 PM")
	require.NoError(t, err)
	require.Equal(t, 15, v.(time.Time).Hour())

	v, err = p.Parse(LocalDateTime, "2024-01-15T10:15:30")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 15, 10, 15, 30, 0, time.UTC), v)

	_, err = p.Parse(LocalDateTime, "2024-01-15")
	require.Error(t, err)
}

func TestParse_CustomLayouts(t *testing.T) {
	p := NewTypeParser(language.AmericanEnglish, DateLayouts{
		Date:     []string{"02012006"},
		DateTime: []string{"20060102150405"},
	})

	v, err := p.Parse(LocalDate, "15032021")
	require.NoError(t, err)
	require.Equal(t, time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC), v)

	// Custom date layouts replace the built-in ones, 2-digit years included.
	require.False(t, p.CanParse(LocalDate, "2021-03-15"))
	require.False(t, p.CanParse(LocalDate, "1/5/24"))

	v, err = p.Parse(LocalDateTime, "20210315101112")
	require.NoError(t, err)
	require.Equal(t, time.Date(2021, 3, 15, 10, 11, 12, 0, time.UTC), v)

	// Time layouts were not overridden.
	require.True(t, p.CanParse(LocalTime, "10:11"))
}

func TestParse_UnsupportedTypes(t *testing.T) {
	p := NewTypeParser(language.AmericanEnglish, DateLayouts{})
	_, err := p.Parse(Skip, "x")
	require.ErrorIs(t, err, errUnsupportedType)
	require.False(t, p.CanParse(Detect, "x"))
	require.True(t, p.CanParse(String, "anything"))
}

func BenchmarkParse_Double(b *testing.B) {
	p := NewTypeParser(language.AmericanEnglish, DateLayouts{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(Double, "1,234,567.89")
	}
}

func BenchmarkCanParse_LocalDate(b *testing.B) {
	p := NewTypeParser(language.AmericanEnglish, DateLayouts{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.CanParse(LocalDate, "1/5/24")
	}
}
