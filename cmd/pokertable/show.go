package main

import (
	"fmt"

	"github.com/lox/pokertable/internal/display"
	"github.com/lox/pokertable/internal/store"
)

// ShowCmd prints a stored table, or lists stored tables when no id is given.
type ShowCmd struct {
	ID      string `kong:"arg,optional,help='Table id to show'"`
	DataDir string `kong:"default='data',type='path',help='Snapshot directory'"`
	Viewer  string `kong:"help='Show the table as this player sees it (default: spectator)'"`
	Log     int    `kong:"default='10',help='Number of log lines to show'"`
}

func (c *ShowCmd) Run(g *Globals) error {
	logger, err := g.newLogger(g.LogLevel)
	if err != nil {
		return err
	}
	st, err := store.New(c.DataDir, logger)
	if err != nil {
		return err
	}

	if c.ID == "" {
		ids, err := st.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println(display.InfoStyle.Render("No tables stored in " + st.Dir()))
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	table, err := st.Load(c.ID)
	if err != nil {
		return err
	}
	fmt.Print(display.RenderTable(table.View(c.Viewer), c.Log))
	return nil
}
