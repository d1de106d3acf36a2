package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewPlayCmd runs a quiz in the terminal against the configured bank.
func NewPlayCmd(configPath *string) *cobra.Command {
	var seconds int
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			// keep the board readable unless asked for more
			if log.GetLevel() == logrus.InfoLevel {
				log.SetLevel(logrus.WarnLevel)
			}
			d, err := buildDeps(cmd.Context(), cfg, log, roleTerminal)
			if err != nil {
				return err
			}
			defer d.Close()

			if seconds <= 0 {
				seconds = cfg.Quiz.SecondsPerQuestion
			}
			service := app.NewQuizService(d.bank, d.scores, d.sessions,
				app.WithSecondsPerQuestion(seconds),
				app.WithLogger(log),
			)
			return newPlayer(service, cmd.InOrStdin(), cmd.OutOrStdout()).run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&seconds, "seconds", 0, "seconds per question (overrides config)")
	return cmd
}

type nextStep int

const (
	stepRetry nextStep = iota
	stepChangeCategory
	stepQuit
)

type player struct {
	service *app.QuizService
	lines   <-chan string
	out     io.Writer

	// full time of the open question, to skip the tick that echoes it
	full int
}

func newPlayer(service *app.QuizService, in io.Reader, out io.Writer) *player {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return &player{service: service, lines: lines, out: out}
}

func (p *player) run(ctx context.Context) error {
	category := ""
	for {
		if category == "" {
			chosen, ok, err := p.chooseCategory(ctx)
			if err != nil || !ok {
				return err
			}
			category = chosen
		}
		step, err := p.playRound(ctx, category)
		if err != nil {
			return err
		}
		switch step {
		case stepChangeCategory:
			category = ""
		case stepQuit:
			fmt.Fprintln(p.out, "Bye!")
			return nil
		}
	}
}

func (p *player) chooseCategory(ctx context.Context) (string, bool, error) {
	names, err := p.service.Categories(ctx)
	if err != nil {
		return "", false, err
	}
	fmt.Fprintln(p.out, "\nSubjects:")
	for i, name := range names {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, name)
	}
	for {
		fmt.Fprintln(p.out, "Choose a subject (name or number, q to quit):")
		line, ok := p.readLine(ctx)
		if !ok || line == "q" {
			return "", false, ctx.Err()
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(names) {
			line = names[n-1]
		}
		if line == "" || line == domain.NoCategory {
			fmt.Fprintln(p.out, domain.ErrNoCategorySelected.Error())
			continue
		}
		return line, true, nil
	}
}

func (p *player) playRound(ctx context.Context, category string) (nextStep, error) {
	best, recorded, err := p.service.HighScore(ctx, category)
	if err != nil {
		return stepQuit, err
	}
	runner, err := p.service.Start(ctx, category, 0)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCategory) || errors.Is(err, domain.ErrEmptyCategory) {
			fmt.Fprintf(p.out, "%s: %v\n", category, err)
			return stepChangeCategory, nil
		}
		return stepQuit, err
	}
	defer p.service.Abandon(runner.ID())
	fmt.Fprintf(p.out, "\n%s  High: %s\n", category, bestLabel(best, recorded))

	events, cancel := runner.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return stepQuit, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return stepQuit, nil
			}
			p.render(ev)
		case line, ok := <-p.lines:
			if !ok {
				return stepQuit, nil
			}
			line = strings.TrimSpace(line)
			if line == "q" {
				return stepQuit, nil
			}
			view := runner.View()
			if view.Outcome == domain.OutcomePending {
				p.answer(runner, view, line)
				continue
			}
			if line != "" && line != "n" {
				fmt.Fprintln(p.out, "Press Enter (or n) for the next question, q to quit.")
				continue
			}
			view, err = runner.Advance()
			if err != nil {
				fmt.Fprintln(p.out, err)
				continue
			}
			if view.Phase != domain.PhaseFinished {
				continue
			}
			result, err := p.service.Finish(ctx, runner.ID())
			if err != nil {
				return stepQuit, err
			}
			p.renderResult(result)
			return p.askAgain(ctx), nil
		}
	}
}

func (p *player) answer(runner *app.Runner, view domain.View, line string) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(view.Choices) {
		fmt.Fprintf(p.out, "Answer with a number from 1 to %d.\n", len(view.Choices))
		return
	}
	// the verdict arrives as an event
	if _, err := runner.Submit(view.Choices[n-1]); err != nil {
		fmt.Fprintln(p.out, err)
	}
}

func (p *player) render(ev domain.Event) {
	v := ev.View
	switch ev.Type {
	case domain.EventQuestion:
		p.full = v.Remaining
		fmt.Fprintf(p.out, "\n%d / %d   Score: %d   %ds\n", v.Index+1, v.Total, v.Score, v.Remaining)
		fmt.Fprintln(p.out, v.Prompt)
		for i, choice := range v.Choices {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, choice)
		}
	case domain.EventTick:
		if v.Remaining > 0 && v.Remaining < p.full && (v.Remaining <= 5 || v.Remaining%10 == 0) {
			fmt.Fprintf(p.out, "  %ds left\n", v.Remaining)
		}
	case domain.EventAnswered:
		if ev.Answer.Outcome == domain.OutcomeCorrect {
			fmt.Fprintln(p.out, "Correct!")
		} else {
			fmt.Fprintf(p.out, "Wrong. The answer is %s.\n", ev.Answer.CorrectChoice)
		}
		p.footer(v)
	case domain.EventTimeout:
		fmt.Fprintf(p.out, "Time's up! The answer is %s.\n", ev.Answer.CorrectChoice)
		p.footer(v)
	}
}

func (p *player) footer(v domain.View) {
	fmt.Fprintf(p.out, "Score: %d\n", v.Score)
	if v.Index+1 < v.Total {
		fmt.Fprintln(p.out, "Press Enter (or n) for the next question, q to quit.")
	} else {
		fmt.Fprintln(p.out, "Press Enter (or n) to see your result, q to quit.")
	}
}

func (p *player) renderResult(r domain.Result) {
	fmt.Fprintf(p.out, "\n%d / %d\n%d%%\n", r.Score, r.Total, r.Percent)
	if r.IsNewBest {
		fmt.Fprintf(p.out, "New best for %s: %d\n", r.Category, r.UpdatedBest)
	} else {
		fmt.Fprintf(p.out, "Best for %s: %s\n", r.Category, bestLabel(r.PreviousBest, r.PreviousBest > 0))
	}
	if r.Celebrate {
		fmt.Fprintln(p.out, "Great job!")
	} else {
		fmt.Fprintln(p.out, "Nice attempt!, You can do better!")
	}
}

func (p *player) askAgain(ctx context.Context) nextStep {
	for {
		fmt.Fprintln(p.out, "[r] try again  [c] change subject  [q] quit")
		line, ok := p.readLine(ctx)
		if !ok {
			return stepQuit
		}
		switch line {
		case "r":
			return stepRetry
		case "c":
			return stepChangeCategory
		case "q":
			return stepQuit
		}
	}
}

func (p *player) readLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-p.lines:
		return strings.TrimSpace(line), ok
	}
}

func bestLabel(score int, recorded bool) string {
	if !recorded {
		return "—"
	}
	return strconv.Itoa(score)
}
