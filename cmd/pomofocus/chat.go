package main

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/kazz187/pomofocus/internal/chat"
	"github.com/kazz187/pomofocus/internal/dialogue"
)

func (a *cliApp) chat(ctx context.Context, in io.Reader) error {
	me, err := a.me()
	if err != nil {
		return err
	}
	ctrl := dialogue.NewController(me.Email, a.lifecycle, a.client)
	for _, turn := range ctrl.Log() {
		a.printTurn(turn)
	}

	scanner := bufio.NewScanner(in)
	for {
		userColor.Fprint(a.out, "you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		res := ctrl.Handle(ctx, line)
		for _, turn := range res.Turns {
			a.printTurn(turn)
		}
		if res.Created != nil {
			dimColor.Fprintf(a.out, "      saved as %s\n", shortID(res.Created.ID))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	a.printf("\n")
	return scanner.Err()
}

func (a *cliApp) printTurn(turn chat.Turn) {
	if turn.Type == chat.TurnUser {
		a.printf("%s %s\n", userColor.Sprint("you>"), turn.Content)
		return
	}
	a.printf("%s %s\n", botColor.Sprint("bot>"), turn.Content)
}
