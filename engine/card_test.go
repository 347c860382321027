package engine

import "testing"

func TestDeckPoints(t *testing.T) {
	total := 0
	for c := Card(0); c < NumCards; c++ {
		total += int(c.Points())
	}
	if total != 120 {
		t.Fatalf("deck totals %d points, want 120", total)
	}
}

func TestCardStringParse(t *testing.T) {
	for c := Card(0); c < NumCards; c++ {
		got, err := ParseCard(c.String())
		if err != nil {
			t.Fatalf("ParseCard(%q): %v", c.String(), err)
		}
		if got != c {
			t.Errorf("ParseCard(%q) = %v, want %v", c.String(), got, c)
		}
	}
	if c, err := ParseCard("10s"); err != nil || c != NewCard(Rank10, SuitSpades) {
		t.Errorf("ParseCard(\"10s\") = %v, %v", c, err)
	}
	if _, err := ParseCard("XQ"); err == nil {
		t.Error("ParseCard accepted an invalid token")
	}
	if _, err := ParseCard("A"); err == nil {
		t.Error("ParseCard accepted a one-letter token")
	}
}

func TestCardClass(t *testing.T) {
	hearts := NewNormal(ModeHearts, LevelNormal)
	grand := NewNormal(ModeGrand, LevelNormal)

	jd := NewCard(RankJack, SuitDiamonds)
	ah := NewCard(RankAce, SuitHearts)
	as := NewCard(RankAce, SuitSpades)

	if cls := jd.Class(hearts); !cls.Trump {
		t.Error("Jack must be trump in a color game")
	}
	if cls := ah.Class(hearts); !cls.Trump {
		t.Error("declared suit must be trump")
	}
	if cls := as.Class(hearts); cls.Trump {
		t.Error("off-suit Ace must not be trump")
	}
	if cls := ah.Class(grand); cls.Trump {
		t.Error("only Jacks are trump at Grand")
	}
	if cls := jd.Class(DeclNull); cls.Trump {
		t.Error("nothing is trump at Null")
	}
}

func TestTrickWinner(t *testing.T) {
	hearts := NewNormal(ModeHearts, LevelNormal)
	tests := []struct {
		name  string
		d     Declaration
		trick []Card
		want  int
	}{
		{
			name: "highest of lead suit wins",
			d:    hearts,
			trick: []Card{
				NewCard(RankKing, SuitSpades),
				NewCard(RankAce, SuitSpades),
				NewCard(Rank7, SuitSpades),
			},
			want: 1,
		},
		{
			name: "ten beats king in a color game",
			d:    hearts,
			trick: []Card{
				NewCard(RankKing, SuitSpades),
				NewCard(Rank10, SuitSpades),
				NewCard(Rank9, SuitSpades),
			},
			want: 1,
		},
		{
			name: "trump beats lead suit",
			d:    hearts,
			trick: []Card{
				NewCard(RankAce, SuitSpades),
				NewCard(Rank7, SuitHearts),
				NewCard(Rank10, SuitSpades),
			},
			want: 1,
		},
		{
			name: "jack of clubs beats jack of spades",
			d:    hearts,
			trick: []Card{
				NewCard(RankJack, SuitSpades),
				NewCard(RankJack, SuitClubs),
				NewCard(RankAce, SuitHearts),
			},
			want: 1,
		},
		{
			name: "off-suit card cannot win",
			d:    hearts,
			trick: []Card{
				NewCard(Rank7, SuitSpades),
				NewCard(RankAce, SuitClubs),
				NewCard(Rank8, SuitSpades),
			},
			want: 2,
		},
		{
			name: "natural order at null",
			d:    DeclNull,
			trick: []Card{
				NewCard(RankJack, SuitSpades),
				NewCard(Rank10, SuitSpades),
				NewCard(RankQueen, SuitSpades),
			},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trickWinner(tt.trick, tt.d); got != tt.want {
				t.Errorf("trickWinner = %d, want %d", got, tt.want)
			}
		})
	}
}
