package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/azrachess/azrachess/internal/chess"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		fen      string
		castling bool
		parallel bool
		verbose  bool
	)
	flag.StringVar(&fen, "fen", "", "Start from this FEN instead of the standard position")
	flag.BoolVar(&castling, "castling", false, "Generate castling moves")
	flag.BoolVar(&parallel, "parallel", false, "Filter candidate moves concurrently")
	flag.BoolVar(&verbose, "v", false, "Log every applied move")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: replay [OPTIONS] [MOVE...]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Applies moves like e2e4 and prints the board. Moves are read from stdin when none are given.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	moves := flag.Args()
	if len(moves) == 0 {
		var err error
		if moves, err = readMoves(os.Stdin); err != nil {
			log.Fatal().Err(err).Msg("Failed to read moves")
		}
	}

	opts := []chess.Option{chess.WithLogger(log.Logger)}
	if castling {
		opts = append(opts, chess.WithCastlingMoves())
	}
	if parallel {
		opts = append(opts, chess.WithParallelCheckFilter())
	}

	if err := replay(os.Stdout, fen, moves, opts...); err != nil {
		log.Error().Err(err).Msg("Replay stopped")
		os.Exit(1)
	}
}

// readMoves splits r on whitespace.
func readMoves(r io.Reader) ([]string, error) {
	var moves []string
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		moves = append(moves, scanner.Text())
	}
	return moves, scanner.Err()
}

// replay applies moves in order and prints the final position to w. On the
// first rejected move it prints the position reached so far and returns
// the error.
func replay(w io.Writer, fen string, moves []string, opts ...chess.Option) error {
	g := chess.NewGame(opts...)
	if fen != "" {
		var err error
		if g, err = chess.NewGameFromFEN(fen, opts...); err != nil {
			return err
		}
	}

	var err error
	for i, text := range moves {
		var m chess.MoveRecord
		if m, err = chess.ParseMove(strings.ToLower(text)); err != nil {
			err = fmt.Errorf("move %d: %w", i+1, err)
			break
		}
		var res chess.MoveResult
		if res, err = g.Move(m.From, m.To); err != nil {
			err = fmt.Errorf("move %d (%s): %w", i+1, m, err)
			break
		}
		log.Debug().
			Int("ply", i+1).
			Str("move", m.String()).
			Str("special", res.Special.String()).
			Bool("check", res.Check).
			Msg("Move applied")
	}

	fmt.Fprint(w, g.Board())
	fmt.Fprintf(w, "turn: %s\n", g.Turn())
	if winner, over := g.Winner(); over {
		fmt.Fprintf(w, "winner: %s\n", winner)
	} else if g.InCheck() {
		fmt.Fprintln(w, "check")
	}
	fmt.Fprintf(w, "fen: %s\n", g.FEN())
	return err
}
