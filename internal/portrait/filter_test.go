package portrait

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsHumanPhoto(t *testing.T) {
	t.Parallel()

	aliases := MakeAliases("모차르트 (음악가)")
	tests := []struct {
		name string
		file string
		want bool
	}{
		{"empty", "", false},
		{"portrait keyword", "파일:Wolfgang_Amadeus_Mozart_portrait.jpg", true},
		{"alias match", "파일:Mozart_1782.jpg", true},
		{"neutral kept", "파일:Croce_family.jpg", true},
		{"signature svg", "파일:Mozart_signature.svg", false},
		{"gif", "파일:Mozart.gif", false},
		{"map", "파일:Salzburg_map.png", false},
		{"statue", "파일:Mozart_statue.jpg", false},
		{"grave", "파일:Mozart_grave.jpg", false},
		{"book cover", "파일:Requiem_cover.jpg", false},
		{"coat of arms", "파일:Coat_of_arms_of_Austria.png", false},
		{"autograph", "파일:Mozart-autograph.jpg", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, IsHumanPhoto(tc.file, aliases), tc.file)
		})
	}
}

func TestIsHumanPhotoAliasIgnoresSeparators(t *testing.T) {
	t.Parallel()

	aliases := MakeAliases("Ada Lovelace")
	rank, ok := classify("File:Ada-Lovelace 1840.jpg", aliases)
	require.True(t, ok)
	require.Equal(t, rankAlias, rank)
}

func TestRankFilenames(t *testing.T) {
	t.Parallel()

	aliases := MakeAliases("모차르트 (음악가)")
	files := []string{
		"파일:Salzburg_1780.jpg",
		"파일:Mozart_signature.svg",
		"파일:Young_Mozart.jpg",
		"파일:Flag_of_Austria.svg",
		"파일:Barbara_Krafft_portrait.jpg",
		"파일:Vienna_1790.jpg",
	}

	got := RankFilenames(files, aliases)
	require.Equal(t, []string{
		"파일:Barbara_Krafft_portrait.jpg",
		"파일:Young_Mozart.jpg",
		"파일:Salzburg_1780.jpg",
		"파일:Vienna_1790.jpg",
	}, got)
}
