package main

import (
	"context"
	"fmt"

	"github.com/archivefile/archivefile"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "List the members of an archive",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "archive",
			UsageText: "Path to the archive file",
		},
	},
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "long",
			Usage: "Show sizes alongside names",
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

		members, err := archive.GetMembers()
		if err != nil {
			return err
		}
		logger.Debug("archive listed", zap.String("path", archive.Path()), zap.Int("members", len(members)))

		for _, member := range members {
			if command.Bool("long") {
				kind := "f"
				if member.IsDir {
					kind = "d"
				}
				fmt.Printf("%s %12d %s\n", kind, member.Size, member.Name)
				continue
			}
			fmt.Println(member.Name)
		}
		return nil
	},
}

func openArchive(command *cli.Command, path string) (*archivefile.ArchiveFile, error) {
	var opts []archivefile.Option
	if password := command.String("password"); password != "" {
		opts = append(opts, archivefile.WithPassword(password))
	}
	return archivefile.Open(path, opts...)
}
