package session

import (
	"strconv"
	"strings"

	"dolabella/internal/domain"

	"github.com/pkg/errors"
)

// Command is one of the inputs the prompt understands. The set is closed:
// only types in this file implement it.
type Command interface {
	command()
}

type (
	Download      struct{}
	Info          struct{}
	SelectVolumes struct{}
	AggregateInfo struct{}
	List          struct{}
	Help          struct{}
	Debug         struct{}
	Exit          struct{}

	// Lock selects a search result by its 1-based index. 0 releases the lock.
	Lock struct {
		Index int
	}
)

func (Download) command()      {}
func (Info) command()          {}
func (SelectVolumes) command() {}
func (AggregateInfo) command() {}
func (List) command()          {}
func (Help) command()          {}
func (Debug) command()         {}
func (Exit) command()          {}
func (Lock) command()          {}

// ParseCommand maps a line of user input to a Command.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)

	switch strings.ToLower(line) {
	case "d", "download":
		return Download{}, nil
	case "i", "info":
		return Info{}, nil
	case "v", "volumes":
		return SelectVolumes{}, nil
	case "a", "aggregate":
		return AggregateInfo{}, nil
	case "l", "list":
		return List{}, nil
	case "h", "help", "?":
		return Help{}, nil
	case "debug":
		return Debug{}, nil
	case "e", "exit", "q", "quit":
		return Exit{}, nil
	}

	if n, err := strconv.Atoi(line); err == nil {
		return Lock{Index: n}, nil
	}

	return nil, errors.Wrapf(domain.ErrUnknownCommand, "%q", line)
}
