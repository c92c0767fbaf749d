package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/saeidalz13/battleship-tcp/client"
	"github.com/saeidalz13/battleship-tcp/config"
	mb "github.com/saeidalz13/battleship-tcp/models/battleship"
)

const maxPromptAttempts = 5

var errTooManyAttempts = errors.New("too many invalid answers")

type prompter struct {
	scanner *bufio.Scanner
}

// ask re-prompts until parse accepts the answer, at most
// maxPromptAttempts times.
func (p prompter) ask(question string, parse func(answer string) error) error {
	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		fmt.Print(question)
		if !p.scanner.Scan() {
			if err := p.scanner.Err(); err != nil {
				return err
			}
			return errors.New("input closed")
		}
		if err := parse(strings.TrimSpace(p.scanner.Text())); err != nil {
			fmt.Println(err)
			continue
		}
		return nil
	}
	return errTooManyAttempts
}

func (p prompter) askAddress() (string, error) {
	var host string
	err := p.ask("Server IP address [localhost]: ", func(answer string) error {
		if answer == "" {
			answer = "localhost"
		}
		if answer != "localhost" && net.ParseIP(answer) == nil {
			return fmt.Errorf("IP address %q is invalid", answer)
		}
		host = answer
		return nil
	})
	if err != nil {
		return "", err
	}

	port := config.DefaultPort
	err = p.ask(fmt.Sprintf("Server port number [%d]: ", config.DefaultPort), func(answer string) error {
		if answer == "" {
			return nil
		}
		v, err := strconv.Atoi(answer)
		if err != nil || v < 0 || v > 65535 {
			return fmt.Errorf("port %q is invalid", answer)
		}
		port = v
		return nil
	})
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func (p prompter) askBoard() (*mb.Board, error) {
	board := mb.NewBoard()
	for _, ship := range mb.Fleet {
		fmt.Println(board)
		question := fmt.Sprintf("Place the %s (length %d) as front and back, e.g. A1 A%d: ", ship.Name, ship.Length, ship.Length)
		err := p.ask(question, func(answer string) error {
			fields := strings.Fields(answer)
			if len(fields) != 2 {
				return errors.New("enter the front and back coordinates separated by a space")
			}
			if !mb.ValidatePlacement(board, fields[0], fields[1], ship.Length) {
				return fmt.Errorf("%s cannot go from %s to %s", ship.Name, fields[0], fields[1])
			}
			return mb.PlaceShip(board, fields[0], fields[1], ship)
		})
		if err != nil {
			return nil, err
		}
	}
	return board, nil
}

// PickMove asks the player for a cell that was not fired at yet.
func (p prompter) PickMove(ctx context.Context, attackGrid *mb.Board) (mb.Coordinates, error) {
	fmt.Println("Your shots:")
	fmt.Println(attackGrid)

	var move mb.Coordinates
	err := p.ask("Fire at: ", func(answer string) error {
		c, err := mb.ParseCoordinates(answer)
		if err != nil {
			return err
		}
		if attackGrid.IsGuessed(c) {
			return fmt.Errorf("already fired at %s", c)
		}
		move = c
		return nil
	})
	return move, err
}

type printer struct{}

func (printer) OnOutcome(c mb.Coordinates, outcome mb.Outcome, attackGrid *mb.Board) {
	if outcome.Kind == mb.OutcomeHitAndSunk {
		fmt.Printf("%s: hit, you sank the %s!\n", c, outcome.Ship.Name)
		return
	}
	fmt.Printf("%s: %s\n", c, outcome.Kind)
}

func (printer) OnNote(c mb.Coordinates, outcome mb.Outcome, board *mb.Board) {
	fmt.Printf("Opponent fired at %s: %s\n", c, outcome.Kind)
	fmt.Println(board)
}

func main() {
	auto := flag.Bool("auto", false, "place the fleet and fire at random")
	addr := flag.String("addr", "", "server address, prompted for when empty")
	flag.Parse()

	p := prompter{scanner: bufio.NewScanner(os.Stdin)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		c   *client.Client
		err error
	)
	// keep asking until a server answers
	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		serverAddr := *addr
		if serverAddr == "" {
			if serverAddr, err = p.askAddress(); err != nil {
				log.Fatalln(err)
			}
		}
		c, err = client.Dial(ctx, serverAddr, client.DefaultConnectTimeout)
		if err == nil {
			break
		}
		fmt.Printf("Could not establish connection to %s: %v\n", serverAddr, err)
		if *addr != "" {
			os.Exit(1)
		}
	}
	if c == nil {
		log.Fatalln(errTooManyAttempts)
	}
	defer c.Close()

	var (
		board  *mb.Board
		picker client.MovePicker = p
	)
	if *auto {
		rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		board = client.PlaceFleetRandomly(rng)
		picker = client.NewRandomPicker(rng)
	} else if board, err = p.askBoard(); err != nil {
		log.Fatalln(err)
	}

	if err := c.Join(ctx, board); err != nil {
		log.Fatalln("the server did not accept the board:", err)
	}
	fmt.Println("Joined, waiting for an opponent...")

	result, err := c.Play(ctx, picker, printer{})
	if err != nil {
		log.Fatalln(err)
	}

	switch {
	case result.Won && result.Forfeit:
		fmt.Println("You win, the opponent forfeited.")
	case result.Won:
		fmt.Printf("You win with %d shots!\n", result.ShotsFired)
	default:
		fmt.Printf("You lose after %d shots.\n", result.ShotsFired)
	}
}
