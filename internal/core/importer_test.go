package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an xlsx whose first sheet holds rows starting at A1.
func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		require.NoError(t, err)
		cells := row
		require.NoError(t, f.SetSheetRow(sheetName, axis, &cells))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

var canonicalHeader = []any{"full_name", "email", "group_name", "phone", "cssbattle_profile_link", "verified_ofppt"}

func TestParse_ReturnsEveryRowInOrder(t *testing.T) {
	faker := gofakeit.New(7)

	rows := [][]any{canonicalHeader}
	var want []PlayerRecord
	for i := 0; i < 25; i++ {
		rec := PlayerRecord{
			FullName:    faker.Name(),
			Email:       strings.ToLower(faker.Username()) + "@example.com",
			GroupName:   faker.RandomString([]string{"DD101", "DD102", "DEV201"}),
			Phone:       faker.Phone(),
			ProfileLink: "https://cssbattle.dev/player/" + strings.ToLower(faker.Username()),
			Verified:    faker.Bool(),
		}
		want = append(want, rec)
		rows = append(rows, []any{rec.FullName, rec.Email, rec.GroupName, rec.Phone, rec.ProfileLink, rec.Verified})
	}

	got, err := Parse(bytes.NewReader(workbook(t, rows...)))
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_MissingRequiredFieldAbortsFile(t *testing.T) {
	tests := []struct {
		name    string
		row     []any
		missing string
	}{
		{"no name", []any{"", "a@b.co", "DD101"}, "full_name"},
		{"no email", []any{"Ana", nil, "DD101"}, "email"},
		{"no group", []any{"Ana", "a@b.co", "   "}, "group_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := workbook(t,
				[]any{"full_name", "email", "group_name"},
				[]any{"Valid Player", "valid@example.com", "DD101"},
				tt.row,
				[]any{"Another Valid", "another@example.com", "DD102"},
			)

			records, err := ParseBytes(data)
			require.Nil(t, records)
			require.ErrorIs(t, err, ErrMissingRequiredField)

			var ie *ImportError
			require.True(t, errors.As(err, &ie))
			require.Equal(t, 3, ie.Row)
			require.Contains(t, ie.Fields, tt.missing)
		})
	}
}

func TestParse_InvalidEmail(t *testing.T) {
	for _, email := range []string{"not-an-email", "a@b", "a b@c.de", "@example.com", "a@@b.co"} {
		t.Run(email, func(t *testing.T) {
			data := workbook(t,
				[]any{"full_name", "email", "group_name"},
				[]any{"Ana", email, "DD101"},
			)

			records, err := ParseBytes(data)
			require.Nil(t, records)
			require.ErrorIs(t, err, ErrInvalidEmailFormat)
			require.Contains(t, err.Error(), email)
		})
	}
}

func TestParse_AliasPrecedence(t *testing.T) {
	t.Run("canonical header wins", func(t *testing.T) {
		data := workbook(t,
			[]any{"FullName", "full_name", "Email", "Group"},
			[]any{"Alias Name", "Canonical Name", "a@b.co", "DD101"},
		)

		records, err := ParseBytes(data)
		require.NoError(t, err)
		require.Equal(t, "Canonical Name", records[0].FullName)
		require.Equal(t, "a@b.co", records[0].Email)
		require.Equal(t, "DD101", records[0].GroupName)
	})

	t.Run("blank canonical cell falls through", func(t *testing.T) {
		data := workbook(t,
			[]any{"full_name", "FullName", "email", "group_name"},
			[]any{"", "Fallback Name", "a@b.co", "DD101"},
		)

		records, err := ParseBytes(data)
		require.NoError(t, err)
		require.Equal(t, "Fallback Name", records[0].FullName)
	})

	t.Run("alternate headers", func(t *testing.T) {
		data := workbook(t,
			[]any{"Full Name", "Email Address", "Group Name", "Phone Number", "CSS Battle Profile Link", "Verified OFPPT"},
			[]any{"Ana", "ana@example.com", "DD103", "0600000000", "https://cssbattle.dev/player/ana", "TRUE"},
		)

		records, err := ParseBytes(data)
		require.NoError(t, err)
		require.Equal(t, PlayerRecord{
			FullName:    "Ana",
			Email:       "ana@example.com",
			GroupName:   "DD103",
			Phone:       "0600000000",
			ProfileLink: "https://cssbattle.dev/player/ana",
			Verified:    true,
		}, records[0])
	})
}

func TestParse_VerifiedCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"TRUE text", "TRUE", true},
		{"true text", "true", true},
		{"True text", "True", true},
		{"padded true", "  true ", true},
		{"boolean cell true", true, true},
		{"false text", "false", false},
		{"boolean cell false", false, false},
		{"empty", "", false},
		{"missing", nil, false},
		{"yes", "yes", false},
		{"one", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := workbook(t,
				[]any{"full_name", "email", "group_name", "verified"},
				[]any{"Ana", "ana@example.com", "DD101", tt.value},
			)

			records, err := ParseBytes(data)
			require.NoError(t, err)
			require.Equal(t, tt.want, records[0].Verified)
		})
	}
}

func TestParse_TrimsValues(t *testing.T) {
	data := workbook(t,
		[]any{"full_name", "email", "group_name", "phone"},
		[]any{"  Ibrahim Challal  ", " ibrahim@example.com ", "\tDD101 ", " 0611 "},
	)

	records, err := ParseBytes(data)
	require.NoError(t, err)
	require.Equal(t, "Ibrahim Challal", records[0].FullName)
	require.Equal(t, "ibrahim@example.com", records[0].Email)
	require.Equal(t, "DD101", records[0].GroupName)
	require.Equal(t, "0611", records[0].Phone)
}

func TestParse_NumericCellsBecomeText(t *testing.T) {
	data := workbook(t,
		[]any{"full_name", "email", "group_name", "phone"},
		[]any{"Ana", "ana@example.com", 101, 212600000000},
	)

	records, err := ParseBytes(data)
	require.NoError(t, err)
	require.Equal(t, "101", records[0].GroupName)
	require.Equal(t, "212600000000", records[0].Phone)
}

func TestParse_HeaderOnly(t *testing.T) {
	records, err := ParseBytes(workbook(t, canonicalHeader))
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestParse_HeaderBelowFirstRow(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"full_name", "email", "group_name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Yassine Amrani", "yassine@example.com", "DD101"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A5", &[]any{"Nora Bennani", "nora@", "DD101"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ParseBytes(buf.Bytes())
	require.ErrorIs(t, err, ErrInvalidEmailFormat)

	var ie *ImportError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, 5, ie.Row)

	require.NoError(t, f.SetCellValue("Sheet1", "B5", "nora@example.com"))
	buf, err = f.WriteToBuffer()
	require.NoError(t, err)

	records, err := ParseBytes(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Yassine Amrani", records[0].FullName)
}

func TestParse_ContentOutsideHeadedColumnsIsARow(t *testing.T) {
	data := workbook(t,
		canonicalHeader,
		[]any{"Ali", "ali@example.com", "DD101"},
		[]any{nil, nil, nil, nil, nil, nil, "left over note"},
	)

	_, err := ParseBytes(data)
	require.ErrorIs(t, err, ErrMissingRequiredField)

	var ie *ImportError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, 3, ie.Row)
	require.Equal(t, []string{"full_name", "email", "group_name"}, ie.Fields)
}

func TestParse_DecodeError(t *testing.T) {
	_, err := ParseBytes([]byte("full_name,email,group_name\n"))
	require.ErrorIs(t, err, ErrDecode)

	_, err = ParseBytes(nil)
	require.ErrorIs(t, err, ErrDecode)
}

func TestParse_FileReadError(t *testing.T) {
	readErr := errors.New("disk unplugged")
	_, err := Parse(iotest.ErrReader(readErr))
	require.ErrorIs(t, err, ErrFileRead)
	require.ErrorIs(t, err, readErr)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(t.TempDir() + "/nope.xlsx")
	require.ErrorIs(t, err, ErrFileRead)
}

func TestImportError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *ImportError
		want string
	}{
		{
			name: "missing fields",
			err:  &ImportError{Kind: ErrMissingRequiredField, Row: 4, Fields: []string{"email", "group_name"}},
			want: "row 4: missing required fields (email, group_name)",
		},
		{
			name: "invalid email",
			err:  &ImportError{Kind: ErrInvalidEmailFormat, Row: 2, Value: "nope"},
			want: `row 2: invalid email format: "nope"`,
		},
		{
			name: "decode",
			err:  &ImportError{Kind: ErrDecode, Err: errors.New("zip: not a valid zip file")},
			want: "invalid spreadsheet: zip: not a valid zip file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
