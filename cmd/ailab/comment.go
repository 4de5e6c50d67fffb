package main

import (
	"github.com/spf13/cobra"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/hypothesis"
)

var (
	commentParent string
	attachType    string
	attachName    string
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Manage hypothesis comments",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <hyp-id> <body>",
	Short: "Add a comment (or a reply with --parent)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		comment, err := hypSvc.AddComment(getContext(), args[0], &hypothesis.CommentRequest{
			ParentID: commentParent,
			Author:   getActor(),
			Body:     args[1],
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(comment)
		}
		debug.PrintNormal("Added comment %s to %s\n", comment.ID, args[0])
		return nil
	},
}

var commentRemoveCmd = &cobra.Command{
	Use:   "rm <hyp-id> <comment-id>",
	Short: "Delete a comment and its replies",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hypSvc.DeleteComment(getContext(), args[0], args[1]); err != nil {
			return err
		}
		debug.PrintNormal("Removed comment %s from %s\n", args[1], args[0])
		return nil
	},
}

var attachCmd = &cobra.Command{
	Use:   "attach <hyp-id> <url>",
	Short: "Record an attachment by URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := attachName
		if name == "" {
			name = args[1]
		}
		attachment, err := hypSvc.AddAttachment(getContext(), args[0], &hypothesis.AttachmentRequest{
			Name:       name,
			FileType:   attachType,
			URL:        args[1],
			UploadedBy: getActor(),
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(attachment)
		}
		debug.PrintNormal("Attached %s to %s\n", attachment.Name, args[0])
		return nil
	},
}

func init() {
	commentAddCmd.Flags().StringVar(&commentParent, "parent", "", "parent comment id (makes this a reply)")
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentRemoveCmd)
	attachCmd.Flags().StringVar(&attachName, "name", "", "display name (default: the URL)")
	attachCmd.Flags().StringVar(&attachType, "type", "", "file type, e.g. pdf, csv")
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(attachCmd)
}
