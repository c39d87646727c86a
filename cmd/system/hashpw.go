package system

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codecrest/codecrest_backend/pkg/password"
)

func NewHashPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hashpw",
		Short: "Hash an admin password for admin.password",
		Long: `Reads a password from stdin and prints its Argon2id hash. Put the
output in admin.password (or ADMIN_PASSWORD) instead of the plain text.

The hash contains '$' characters. In a .env file, wrap it in single quotes,
since unquoted and double-quoted values expand $name references:

  ADMIN_PASSWORD='$argon2id$v=19$m=65536,t=3,p=2$...'

The same applies to shells; in config.yaml quote it like any string.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			pw := strings.TrimSpace(line)
			if pw == "" {
				return errors.New("password is empty")
			}

			hash, err := password.Hash(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	return cmd
}
