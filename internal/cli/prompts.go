package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/kestrelwallet/kestrel/internal/secure"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// promptPassword prompts for a password with hidden input. The caller
// is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Fprintln(os.Stderr) // newline after hidden input

	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrAccessDenied, "reading password")
	}
	return password, nil
}

// promptNewPassword prompts for a new password with confirmation.
func promptNewPassword() ([]byte, error) {
	password, err := promptPassword("Enter encryption password: ")
	if err != nil {
		return nil, err
	}

	if len(password) < 8 {
		secure.Zero(password)
		return nil, kerrors.WithSuggestion(
			kerrors.ErrInvalidPassword,
			"use at least 8 characters",
		)
	}

	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		secure.Zero(password)
		return nil, err
	}
	defer secure.Zero(confirm)

	if string(password) != string(confirm) {
		secure.Zero(password)
		return nil, kerrors.WithSuggestion(
			kerrors.ErrInvalidPassword,
			"passwords do not match",
		)
	}

	return password, nil
}

// promptLine reads one visible line from stdin. Used for mnemonics and
// confirmation answers, never for passwords.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", kerrors.Wrap(kerrors.ErrAccessDenied, "reading input")
	}
	return strings.TrimSpace(line), nil
}

// promptConfirm asks a yes/no question, defaulting to no.
func promptConfirm(question string) bool {
	answer, err := promptLine(question + " [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
