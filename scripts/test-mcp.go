// test-mcp starts the card-check MCP binary on a scratch database and drives it
// over stdio: initialize, tools/list, a valid and an invalid verify_card call,
// then list_verifications.
//
//	go build -o card-check ./cmd && go run ./scripts/test-mcp.go -binary ./card-check
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  mcp.MCPMethod  `json:"method"`
	Params  map[string]any `json:"params"`
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

type client struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  *bufio.Scanner
	nextID int
}

func main() {
	binary := flag.String("binary", "./card-check", "Path to the card-check MCP binary")
	timeout := flag.Duration("timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()

	if _, err := os.Stat(*binary); err != nil {
		fmt.Fprintf(os.Stderr, "binary not found at %s; build it with: go build -o card-check ./cmd\n", *binary)
		os.Exit(1)
	}

	dir, err := os.MkdirTemp("", "card-check-smoke")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create scratch dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	c, err := start(*binary, dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		os.Exit(1)
	}
	defer c.stop()

	steps := []struct {
		name string
		run  func(*client, time.Duration) error
	}{
		{"initialize", checkInitialize},
		{"tools/list", checkToolList},
		{"verify_card (valid)", checkValidCard},
		{"verify_card (invalid)", checkInvalidCard},
		{"list_verifications", checkList},
	}

	for _, step := range steps {
		fmt.Printf("%-24s ", step.name)
		if err := step.run(c, *timeout); err != nil {
			fmt.Println("FAIL")
			fmt.Fprintf(os.Stderr, "  %v\n", err)
			os.Exit(1)
		}
		fmt.Println("ok")
	}
}

func start(binary, dir string) (*client, error) {
	cmd := exec.Command(binary)
	cmd.Env = append(os.Environ(),
		"CARD_CHECK_DB_PATH="+filepath.Join(dir, "cards.db"),
		"LOG_FILE="+filepath.Join(dir, "card-check.log"),
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	lines := bufio.NewScanner(stdout)
	lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &client{cmd: cmd, stdin: stdin, lines: lines}, nil
}

func (c *client) stop() {
	c.stdin.Close()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
	}
}

func (c *client) call(method mcp.MCPMethod, params map[string]any, timeout time.Duration) (json.RawMessage, error) {
	c.nextID++
	payload, err := json.Marshal(rpcRequest{JSONRPC: mcp.JSONRPC_VERSION, ID: c.nextID, Method: method, Params: params})
	if err != nil {
		return nil, err
	}
	if _, err := c.stdin.Write(append(payload, '\n')); err != nil {
		return nil, err
	}

	type read struct {
		line []byte
		err  error
	}
	ch := make(chan read, 1)
	go func() {
		if c.lines.Scan() {
			ch <- read{line: append([]byte(nil), c.lines.Bytes()...)}
			return
		}
		err := c.lines.Err()
		if err == nil {
			err = io.EOF
		}
		ch <- read{err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("read %s response: %w", method, r.err)
		}
		var resp rpcResponse
		if err := json.Unmarshal(r.line, &resp); err != nil {
			return nil, fmt.Errorf("parse %s response: %w", method, err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("%s failed: %d %s", method, resp.Error.Code, resp.Error.Message)
		}
		return resp.Result, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timed out waiting for %s", method)
	}
}

func (c *client) callTool(name string, args map[string]any, timeout time.Duration) (map[string]any, error) {
	raw, err := c.call(mcp.MethodToolsCall, map[string]any{"name": name, "arguments": args}, timeout)
	if err != nil {
		return nil, err
	}

	var result toolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	if len(result.Content) == 0 {
		return nil, fmt.Errorf("%s returned no content", name)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].Text), &body); err != nil {
		return nil, fmt.Errorf("%s returned non-JSON text: %w", name, err)
	}
	if result.IsError {
		return body, fmt.Errorf("%s returned an error result: %v", name, body["error"])
	}
	return body, nil
}

func checkInitialize(c *client, timeout time.Duration) error {
	_, err := c.call(mcp.MethodInitialize, map[string]any{
		"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "card-check-smoke", "version": "1.0.0"},
	}, timeout)
	return err
}

func checkToolList(c *client, timeout time.Duration) error {
	raw, err := c.call(mcp.MethodToolsList, map[string]any{}, timeout)
	if err != nil {
		return err
	}

	var result struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}

	found := make(map[string]bool)
	for _, tool := range result.Tools {
		found[tool.Name] = true
	}
	for _, want := range []string{"verify_card", "list_verifications"} {
		if !found[want] {
			return fmt.Errorf("missing tool %s", want)
		}
	}
	return nil
}

func checkValidCard(c *client, timeout time.Duration) error {
	body, err := c.callTool("verify_card", map[string]any{
		"card_number": "4532 0151 1283 0366",
		"expiry":      "12/30",
		"cvv":         "123",
	}, timeout)
	if err != nil {
		return err
	}
	outcome, _ := body["outcome"].(map[string]any)
	if valid, _ := outcome["valid"].(bool); !valid {
		return fmt.Errorf("expected a valid outcome, got %v", body)
	}
	return nil
}

func checkInvalidCard(c *client, timeout time.Duration) error {
	body, err := c.callTool("verify_card", map[string]any{
		"card_number": "1234567812345678",
		"expiry":      "13/25",
		"cvv":         "12",
	}, timeout)
	if err != nil {
		return err
	}
	outcome, _ := body["outcome"].(map[string]any)
	if valid, _ := outcome["valid"].(bool); valid {
		return fmt.Errorf("expected an invalid outcome, got %v", body)
	}
	return nil
}

func checkList(c *client, timeout time.Duration) error {
	body, err := c.callTool("list_verifications", map[string]any{"limit": 10}, timeout)
	if err != nil {
		return err
	}
	if count, _ := body["count"].(float64); count != 2 {
		return fmt.Errorf("expected 2 logged verifications, got %v", body["count"])
	}
	return nil
}
