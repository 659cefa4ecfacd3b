package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	actx "go.voidsdatastore.net/voids/app/context"
	aerrors "go.voidsdatastore.net/voids/app/errors"
	"go.voidsdatastore.net/voids/leaderboard"
)

// The Lb command manages leaderboards.
type Lb struct {
	Create struct {
		Namespace string `arg:"" help:"The namespace the leaderboard belongs to."`
		Name      string `arg:"" help:"The unique name of the leaderboard."`
		Position  string `enum:"prefix,suffix" default:"prefix" help:"The side of scores the symbol is attached to."`
		Symbol    string `help:"An optional symbol attached to rendered scores (max 7 characters)."`
	} `kong:"cmd,help='Create a leaderboard.'"`
	SetScore struct {
		Namespace string `arg:"" help:"The namespace the leaderboard belongs to."`
		Name      string `arg:"" help:"The name of the leaderboard."`
		Member    string `arg:"" help:"The member to update."`
		Score     int    `arg:"" help:"The score value."`
	} `kong:"cmd,help='Set the score of a member.'"`
	Show struct {
		Namespace string `arg:"" help:"The namespace the leaderboard belongs to."`
		Name      string `arg:"" help:"The name of the leaderboard."`
	} `kong:"cmd,help='Show the top entries of a leaderboard.'"`
	Ls struct {
		Namespace string `arg:"" help:"The namespace to list leaderboards of."`
	} `kong:"cmd,help='List leaderboards.'"`
	Rm struct {
		Namespace string `arg:"" help:"The namespace the leaderboard belongs to."`
		Name      string `arg:"" help:"The leaderboard to delete."`
	} `kong:"cmd,help='Delete a leaderboard.'"`
}

// Run the lb command.
func (c *Lb) Run(kctx *kong.Context, appCtx *actx.Context) error {
	client, err := newClient(appCtx)
	if err != nil {
		return err
	}

	switch strings.Fields(kctx.Command())[1] {
	case "create":
		svc := leaderboard.NewService(client, c.Create.Namespace)
		err := svc.Create(appCtx.Ctx, c.Create.Name,
			leaderboard.Position(c.Create.Position), c.Create.Symbol)
		if err != nil {
			return aerrors.NewRuntimeError(
				fmt.Sprintf("failed creating leaderboard '%s'", c.Create.Name), err, "")
		}
		fmt.Fprintf(appCtx.Stdout, "Created leaderboard '%s'\n", c.Create.Name)

	case "set-score":
		svc := leaderboard.NewService(client, c.SetScore.Namespace)
		err := svc.SetScore(appCtx.Ctx, c.SetScore.Name, c.SetScore.Member, c.SetScore.Score)
		if err != nil {
			return aerrors.NewRuntimeError(
				fmt.Sprintf("failed setting the score on leaderboard '%s'", c.SetScore.Name), err, "")
		}
		fmt.Fprintf(appCtx.Stdout, "Set %s's score to %d on '%s'\n",
			c.SetScore.Member, c.SetScore.Score, c.SetScore.Name)

	case "show":
		svc := leaderboard.NewService(client, c.Show.Namespace)
		board, err := svc.Board(appCtx.Ctx, c.Show.Name)
		if err != nil {
			return err
		}

		standings := board.Standings()
		if len(standings) == 0 {
			fmt.Fprintln(appCtx.Stdout, "No entries yet!")
			return nil
		}
		if len(standings) > 10 {
			standings = standings[:10]
		}

		data := make([][]string, len(standings))
		for i, st := range standings {
			data[i] = []string{strconv.Itoa(i + 1), st.Member, board.Format(st.Score)}
		}

		header := []string{"Rank", "Member", "Score"}
		newTable(header, data, appCtx.Stdout).Render()

	case "ls":
		svc := leaderboard.NewService(client, c.Ls.Namespace)
		names, err := svc.Names(appCtx.Ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(appCtx.Stdout, name)
		}

	case "rm":
		svc := leaderboard.NewService(client, c.Rm.Namespace)
		if err := svc.Delete(appCtx.Ctx, c.Rm.Name); err != nil {
			return err
		}
		fmt.Fprintf(appCtx.Stdout, "Deleted leaderboard '%s'\n", c.Rm.Name)
	}

	return nil
}
