package questions

import (
	"context"

	"github.com/mindduel/backend/internal/engine"
)

// Static serves rounds from a built-in question bank. Used when no
// provider API key is configured, and by tests that need deterministic
// sets.
type Static struct {
	bank engine.QuestionSet
}

func NewStatic() *Static {
	return &Static{bank: defaultBank}
}

func (s *Static) Generate(_ context.Context) (engine.QuestionSet, error) {
	qs := make(engine.QuestionSet, engine.QuestionsPerRound)
	copy(qs, s.bank)
	return qs, nil
}

var defaultBank = engine.QuestionSet{
	{Prompt: "What is the capital of Japan?", Options: []string{"Seoul", "Tokyo", "Kyoto", "Osaka"}, Answer: "Tokyo"},
	{Prompt: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Jupiter", "Mars", "Saturn"}, Answer: "Mars"},
	{Prompt: "How many continents are there?", Options: []string{"5", "6", "7", "8"}, Answer: "7"},
	{Prompt: "What is the largest ocean on Earth?", Options: []string{"Atlantic", "Indian", "Arctic", "Pacific"}, Answer: "Pacific"},
	{Prompt: "Who painted the Mona Lisa?", Options: []string{"Michelangelo", "Leonardo da Vinci", "Raphael", "Donatello"}, Answer: "Leonardo da Vinci"},
	{Prompt: "What is the chemical symbol for gold?", Options: []string{"Go", "Gd", "Au", "Ag"}, Answer: "Au"},
	{Prompt: "In which year did the first Moon landing happen?", Options: []string{"1965", "1969", "1971", "1973"}, Answer: "1969"},
	{Prompt: "What is the smallest prime number?", Options: []string{"0", "1", "2", "3"}, Answer: "2"},
	{Prompt: "Which language has the most native speakers?", Options: []string{"English", "Hindi", "Spanish", "Mandarin Chinese"}, Answer: "Mandarin Chinese"},
	{Prompt: "What gas do plants absorb from the atmosphere?", Options: []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Hydrogen"}, Answer: "Carbon dioxide"},
}
