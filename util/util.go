package util

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"friendbook/model"
)

// StringFromEmbedFile reads a file from an embedded filesystem to string
func StringFromEmbedFile(embed fs.FS, filename string) (string, error) {
	file, err := embed.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// BuildContactCard creates a MECARD contact string for a user. The profile
// page renders it as a QR code so the contact can be shared by scanning.
func BuildContactCard(user model.User) string {
	name := fmt.Sprintf("N:%s;", escapeMecard(user.Username))
	email := fmt.Sprintf("EMAIL:%s;", escapeMecard(user.Email))
	note := ""
	if user.Bio != "" {
		note = fmt.Sprintf("NOTE:%s;", escapeMecard(user.Bio))
	}
	return "MECARD:" + name + email + note + ";"
}

// escapeMecard escapes the reserved MECARD characters
func escapeMecard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ":", `\:`, ",", `\,`)
	return r.Replace(s)
}
