// Command quill-repl is an interactive test client for quill.
// It drives the improvement engine directly (no daemon required):
// type or pipe in text, terminate it with a lone "." line, and the
// improved version is printed back.
//
// Usage:
//
//	./quill-repl              # interactive
//	./quill-repl < draft.txt  # one-shot over piped input
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	quill "github.com/quill-vim/quill"
	"github.com/quill-vim/quill/improve"
	"golang.org/x/term"
)

const docID = "repl"

func main() {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	engine := improve.NewEngine()
	defer engine.Close()

	if interactive {
		fmt.Println("quill repl")
		fmt.Println()
		fmt.Println("enter text, end with a single '.' line")
		fmt.Println("commands:")
		fmt.Println("  :prompt           show the active prompt")
		fmt.Println("  :default <text>   set the default prompt")
		fmt.Println("  :doc <text>       set this session's prompt override")
		fmt.Println("  :preset <name>    use a named preset as this session's prompt")
		fmt.Println("  :presets          list loaded presets")
		fmt.Println("  :view             toggle scratch-view output")
		fmt.Println("  :quit             exit")
		fmt.Println()
	}

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 64*1024), 8*1024*1024)

	newView := false
	reqID := 0

	for {
		lines, quit := readBlock(in, interactive)
		if quit {
			return
		}
		if len(lines) == 1 && strings.HasPrefix(lines[0], ":") {
			if runCommand(engine, lines[0], &newView) {
				return
			}
			continue
		}
		if len(lines) == 0 {
			continue
		}

		reqID++
		resp := engine.Handle(context.Background(), &quill.Request{
			RequestID: reqID,
			Action:    quill.ActionImprove,
			DocID:     docID,
			Lines:     lines,
			NewView:   newView,
		})
		printResponse(resp)
	}
}

// readBlock reads input lines until a lone "." or EOF. A leading ":"
// line is returned immediately as a command.
func readBlock(in *bufio.Scanner, interactive bool) (lines []string, quit bool) {
	if interactive {
		fmt.Print("> ")
	}
	for in.Scan() {
		line := in.Text()
		if len(lines) == 0 && strings.HasPrefix(line, ":") {
			return []string{line}, false
		}
		if line == "." {
			return lines, false
		}
		lines = append(lines, line)
		if interactive {
			fmt.Print("> ")
		}
	}
	// EOF: improve whatever was gathered, then stop on the next round.
	if len(lines) > 0 {
		return lines, false
	}
	return nil, true
}

// runCommand executes a ":" command. It returns true when the repl
// should exit.
func runCommand(engine *improve.Engine, line string, newView *bool) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case ":quit", ":q":
		return true
	case ":view":
		*newView = !*newView
		fmt.Printf("scratch-view output: %v\n", *newView)
	case ":prompt":
		resp := engine.Handle(context.Background(), &quill.Request{Action: quill.ActionGetPrompt, DocID: docID})
		printResponse(resp)
	case ":default":
		resp := engine.Handle(context.Background(), &quill.Request{Action: quill.ActionSetDefaultPrompt, Prompt: arg})
		printResponse(resp)
	case ":doc":
		resp := engine.Handle(context.Background(), &quill.Request{Action: quill.ActionSetPrompt, DocID: docID, Prompt: arg})
		printResponse(resp)
	case ":preset":
		resp := engine.Handle(context.Background(), &quill.Request{Action: quill.ActionSetPrompt, DocID: docID, Preset: arg})
		printResponse(resp)
	case ":presets":
		resp := engine.Handle(context.Background(), &quill.Request{Action: quill.ActionPresets})
		printResponse(resp)
	default:
		fmt.Printf("unknown command %s\n", cmd)
	}
	return false
}

func printResponse(resp *quill.Response) {
	w := io.Writer(os.Stdout)

	for _, warn := range resp.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	if resp.Error != nil {
		fmt.Fprintf(w, "error [%s]: %s\n", resp.Error.Code, resp.Error.Message)
		if resp.Error.Detail != "" {
			fmt.Fprintf(w, "detail: %s\n", resp.Error.Detail)
		}
		return
	}

	switch {
	case resp.View != nil:
		fmt.Fprintf(w, "--- %s (read-only) ---\n", resp.View.Name)
		for _, l := range resp.View.Lines {
			fmt.Fprintln(w, l)
		}
		fmt.Fprintln(w, "---")
	case resp.Lines != nil:
		for _, l := range resp.Lines {
			fmt.Fprintln(w, l)
		}
	case resp.Presets != nil:
		for name, text := range resp.Presets {
			fmt.Fprintf(w, "%s: %s\n", name, text)
		}
		if len(resp.Presets) == 0 {
			fmt.Fprintln(w, "(no presets loaded)")
		}
	case resp.Prompt != "":
		fmt.Fprintln(w, resp.Prompt)
	}
}
