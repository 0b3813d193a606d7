package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var catCommand = &cli.Command{
	Name:  "cat",
	Usage: "Write a member's content to stdout",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "archive",
			UsageText: "Path to the archive file",
		},
		&cli.StringArg{
			Name:      "member",
			UsageText: "Name of the member to read",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		path := command.StringArg("archive")
		member := command.StringArg("member")
		if path == "" || member == "" {
			return fmt.Errorf("usage: archivefile cat <archive> <member>")
		}

		archive, err := openArchive(command, path)
		if err != nil {
			return err
		}
		defer archive.Close()

		data, err := archive.ReadBytes(member)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}
