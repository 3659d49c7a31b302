package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klinik-dev/klinik-store/internal/store"
)

func newListCmd() *cobra.Command {
	var (
		query   string
		sortKey string
		dir     string
		offset  int
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := client().List(cmd.Context(), args[0], store.ListOptions{
				Query:      query,
				SortKey:    sortKey,
				Descending: dir == "desc",
				Offset:     offset,
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			fmt.Printf("total: %d\n", res.Total)
			return printJSON(res.Items)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "substring filter")
	cmd.Flags().StringVar(&sortKey, "sort", "", "field to sort by")
	cmd.Flags().StringVar(&dir, "dir", "asc", "sort direction (asc|desc)")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	cmd.Flags().IntVar(&limit, "limit", store.DefaultLimit, "page size")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Fetch one record by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := client().Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(row)
		},
	}
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <collection> <json>",
		Short: "Create a record from a JSON object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload store.Record
			if err := json.Unmarshal([]byte(args[1]), &payload); err != nil {
				return fmt.Errorf("payload is not a JSON object: %w", err)
			}
			row, err := client().Create(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return printJSON(row)
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <collection> <id> <json>",
		Short: "Shallow-merge a JSON patch onto a record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.Record
			if err := json.Unmarshal([]byte(args[2]), &patch); err != nil {
				return fmt.Errorf("patch is not a JSON object: %w", err)
			}
			row, err := client().Update(cmd.Context(), args[0], args[1], patch)
			if err != nil {
				return err
			}
			return printJSON(row)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete a record and print the removed row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := client().Delete(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(removed)
		},
	}
}
