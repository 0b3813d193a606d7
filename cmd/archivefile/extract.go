package main

import (
	"context"
	"fmt"

	"github.com/archivefile/archivefile"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var extractCommand = &cli.Command{
	Name:  "extract",
	Usage: "Extract an archive, or selected members of it",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "archive",
			UsageText: "Path to the archive file",
		},
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Destination directory (default: current directory)",
		},
		&cli.StringSliceFlag{
			Name:    "member",
			Aliases: []string{"m"},
			Usage:   "Extract only this member (repeatable)",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		path := command.StringArg("archive")
		if path == "" {
			return fmt.Errorf("no archive file provided")
		}

		archive, err := openArchive(command, path)
		if err != nil {
			return err
		}
		defer archive.Close()

		var members []archivefile.MemberRef
		for _, name := range command.StringSlice("member") {
			members = append(members, name)
		}

		dest, err := archive.ExtractAll(command.String("output"), members...)
		if err != nil {
			return err
		}

		logger.Info("archive extracted",
			zap.String("path", archive.Path()),
			zap.String("destination", dest))
		fmt.Println(dest)
		return nil
	},
}
