package memory

import "trivia-quiz/internal/domain"

// DefaultQuestions is the built-in bank used when no file or database is configured.
func DefaultQuestions() map[string][]domain.Question {
	return map[string][]domain.Question{
		"general": {
			{
				Prompt:        "What is the capital of France?",
				Choices:       []string{"Paris", "London", "Berlin", "Rome"},
				CorrectChoice: "Paris",
			},
			{
				Prompt:        "Which language runs in a web browser?",
				Choices:       []string{"Java", "C#", "JavaScript", "Python"},
				CorrectChoice: "JavaScript",
			},
			{
				Prompt:        "HTML stands for?",
				Choices:       []string{"HyperText Markup Language", "HighText", "HyperTrain", "HyperTool"},
				CorrectChoice: "HyperText Markup Language",
			},
			{
				Prompt:        "Which day is celebrated as World Earth Day?",
				Choices:       []string{"April 22", "May 1", "June 5", "March 20"},
				CorrectChoice: "April 22",
			},
		},
		"science": {
			{
				Prompt:        "What planet is known as the Red Planet?",
				Choices:       []string{"Mars", "Venus", "Jupiter", "Neptune"},
				CorrectChoice: "Mars",
			},
			{
				Prompt:        "Water's chemical formula?",
				Choices:       []string{"H2O", "CO2", "O2", "H2"},
				CorrectChoice: "H2O",
			},
			{
				Prompt:        "The powerhouse of the cell?",
				Choices:       []string{"Nucleus", "Mitochondria", "Ribosome", "Golgi body"},
				CorrectChoice: "Mitochondria",
			},
			{
				Prompt:        "Light speed approx?",
				Choices:       []string{"300,000 km/s", "150,000 km/s", "1,000,000 km/s", "30,000 km/s"},
				CorrectChoice: "300,000 km/s",
			},
		},
		"history": {
			{
				Prompt:        "Who discovered America (commonly credited)?",
				Choices:       []string{"Christopher Columbus", "Vasco da Gama", "Leif Erikson", "Magellan"},
				CorrectChoice: "Christopher Columbus",
			},
			{
				Prompt:        "Which year did WW2 end?",
				Choices:       []string{"1945", "1939", "1918", "1950"},
				CorrectChoice: "1945",
			},
			{
				Prompt:        "The Great Pyramid is in which country?",
				Choices:       []string{"Egypt", "Mexico", "Peru", "Iraq"},
				CorrectChoice: "Egypt",
			},
			{
				Prompt:        "Which empire was ruled by Julius Caesar?",
				Choices:       []string{"Roman Empire", "Mongol Empire", "Ottoman Empire", "Persian Empire"},
				CorrectChoice: "Roman Empire",
			},
		},
	}
}

// NewDefaultBank wraps DefaultQuestions in a StaticBank.
func NewDefaultBank() *StaticBank {
	bank, err := NewStaticBank(DefaultQuestions())
	if err != nil {
		panic(err)
	}
	return bank
}
