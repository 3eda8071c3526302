package cli

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type spinnerTick struct{}
type spinnerStop struct{}

type spinnerModel struct {
	message  string
	frame    int
	stopping bool
}

func (m spinnerModel) Init() tea.Cmd { return spinnerNext() }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case spinnerTick:
		m.frame++
		return m, spinnerNext()
	case spinnerStop:
		m.stopping = true
		return m, tea.Quit
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.stopping {
		return ""
	}
	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	return styleIconSpinner.Render(frame) + " " + StyleDim.Render(m.message)
}

func spinnerNext() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return spinnerTick{} })
}

// Spinner shows progress on stderr while a long operation runs. It is a
// no-op when stderr is not a terminal.
type Spinner struct {
	prog *tea.Program
	done chan struct{}
}

func startSpinner(ctx context.Context, message string) *Spinner {
	if !isTerminal(os.Stderr) {
		return &Spinner{}
	}
	s := &Spinner{
		prog: tea.NewProgram(spinnerModel{message: message},
			tea.WithContext(ctx), tea.WithInput(nil), tea.WithOutput(os.Stderr)),
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		_, _ = s.prog.Run()
	}()
	return s
}

// Stop clears the spinner line and waits for it to exit.
func (s *Spinner) Stop() {
	if s.prog == nil {
		return
	}
	s.prog.Send(spinnerStop{})
	<-s.done
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(format string, args ...any) {
	s.Stop()
	printSuccess(format, args...)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(format string, args ...any) {
	s.Stop()
	printError(format, args...)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
