package trigger

import (
	"reflect"
	"testing"

	"coinsentinel/internal/models"
)

const (
	testAuthor = "handle"
	testText   = "this is Example tweet Text"
)

func TestMatch_NoRuleMatches(t *testing.T) {
	rules := []Rule{
		{Author: "nothandle", Phrases: []string{"no"}, Tier: models.TierRed, Message: "msg"},
		{Author: "handle", Phrases: []string{"this", "no"}, Tier: models.TierRed, Message: "msg"},
		{Author: "nothandle", Phrases: []string{"this"}, Tier: models.TierRed, Message: "msg"},
	}

	if got := Match(testAuthor, testText, rules); len(got) != 0 {
		t.Errorf("Match() = %v, want empty", got)
	}
}

func TestMatch_AmberMatchesAccumulate(t *testing.T) {
	rules := []Rule{
		{Author: "handle", Tier: models.TierAmber, Message: "msg"},
		{Phrases: []string{"example", "this"}, Tier: models.TierAmber, Message: "msg"},
	}

	got := Match(testAuthor, testText, rules)
	if !reflect.DeepEqual(got, rules) {
		t.Errorf("Match() = %v, want %v", got, rules)
	}
}

func TestMatch_RedShortCircuits(t *testing.T) {
	rules := []Rule{
		{Author: "handle", Tier: models.TierAmber, Message: "msg"},
		{Phrases: []string{"example", "this"}, Tier: models.TierRed, Message: "msg"},
		{Phrases: []string{"example", "this"}, Tier: models.TierAmber, Message: "late"},
	}

	got := Match(testAuthor, testText, rules)
	if !reflect.DeepEqual(got, rules[:2]) {
		t.Errorf("Match() = %v, want %v", got, rules[:2])
	}
	if got[len(got)-1].Tier != models.TierRed {
		t.Errorf("last matched tier = %v, want red", got[len(got)-1].Tier)
	}
}

func TestMatch_PhrasesCaseInsensitive(t *testing.T) {
	rules := []Rule{
		{Phrases: []string{"EXAMPLE"}, Tier: models.TierAmber, Message: "msg"},
	}

	if got := Match(testAuthor, testText, rules); len(got) != 1 {
		t.Errorf("Match() = %v, want one match", got)
	}
}

func TestMatch_AuthorCaseSensitive(t *testing.T) {
	rules := []Rule{
		{Author: "Handle", Tier: models.TierRed, Message: "msg"},
	}

	if got := Match(testAuthor, testText, rules); len(got) != 0 {
		t.Errorf("Match() = %v, want empty for case mismatch", got)
	}
}

func TestMatch_EmptyEventAuthorNeverMatchesAuthorRule(t *testing.T) {
	rules := []Rule{
		{Author: "handle", Tier: models.TierRed, Message: "msg"},
	}

	if got := Match("", testText, rules); len(got) != 0 {
		t.Errorf("Match() = %v, want empty when event has no author", got)
	}
}

func TestMatch_EmptyRuleSet(t *testing.T) {
	if got := Match(testAuthor, testText, nil); len(got) != 0 {
		t.Errorf("Match() = %v, want empty for nil rules", got)
	}
}

func TestMatch_AllPhrasesRequired(t *testing.T) {
	rules := []Rule{
		{Phrases: []string{"example", "missing"}, Tier: models.TierAmber, Message: "msg"},
	}

	if got := Match(testAuthor, testText, rules); len(got) != 0 {
		t.Errorf("Match() = %v, want empty when one phrase is absent", got)
	}
}
