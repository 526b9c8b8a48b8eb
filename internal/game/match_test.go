package game

import "testing"

// TestWinner verifies the target-plus-margin win condition
func TestWinner(t *testing.T) {
	tests := []struct {
		name          string
		scorePlayer   int
		scoreOpponent int
		wantOver      bool
		wantWinner    Side
	}{
		{"fresh match", 0, 0, false, SidePlayer},
		{"player at 11 with lead", 11, 9, true, SidePlayer},
		{"player at 11 lead of one", 11, 10, false, SidePlayer},
		{"deuce resolved at 12-10", 12, 10, true, SidePlayer},
		{"opponent wins", 7, 11, true, SideOpponent},
		{"extended deuce continues", 14, 13, false, SidePlayer},
		{"extended deuce resolved", 15, 13, true, SidePlayer},
		{"below target with big lead", 10, 0, false, SidePlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, over := Winner(tt.scorePlayer, tt.scoreOpponent, 11, 2)
			if over != tt.wantOver {
				t.Fatalf("Winner(%d, %d) over = %v, want %v", tt.scorePlayer, tt.scoreOpponent, over, tt.wantOver)
			}
			if over && winner != tt.wantWinner {
				t.Errorf("Winner(%d, %d) = %v, want %v", tt.scorePlayer, tt.scoreOpponent, winner, tt.wantWinner)
			}
		})
	}
}

// TestServerForTotal verifies serve rotation every two points
func TestServerForTotal(t *testing.T) {
	tests := []struct {
		total int
		want  Side
	}{
		{0, SidePlayer},
		{1, SidePlayer},
		{2, SideOpponent},
		{3, SideOpponent},
		{4, SidePlayer},
		{5, SidePlayer},
		{6, SideOpponent},
		{20, SidePlayer},
	}

	for _, tt := range tests {
		if got := ServerForTotal(tt.total); got != tt.want {
			t.Errorf("ServerForTotal(%d) = %v, want %v", tt.total, got, tt.want)
		}
	}
}

// TestSideOther verifies side flipping
func TestSideOther(t *testing.T) {
	if SidePlayer.Other() != SideOpponent {
		t.Error("player's other side should be opponent")
	}
	if SideOpponent.Other() != SidePlayer {
		t.Error("opponent's other side should be player")
	}
}

// TestSideAndPhaseJSON verifies enums marshal as their string names
func TestSideAndPhaseJSON(t *testing.T) {
	sideJSON, err := SideOpponent.MarshalJSON()
	if err != nil {
		t.Fatalf("Side.MarshalJSON: %v", err)
	}
	if string(sideJSON) != `"opponent"` {
		t.Errorf("SideOpponent JSON = %s, want %q", sideJSON, "opponent")
	}

	phaseJSON, err := PhaseRallying.MarshalJSON()
	if err != nil {
		t.Fatalf("Phase.MarshalJSON: %v", err)
	}
	if string(phaseJSON) != `"rallying"` {
		t.Errorf("PhaseRallying JSON = %s, want %q", phaseJSON, "rallying")
	}
}
