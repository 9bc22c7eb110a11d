//go:build ignore
// +build ignore

// Package main provides a manual concurrency stress test for the issue endpoint.
//
// Usage:
//
//	go run ./scripts/concurrency_test.go <book_id> <member1_id> [member2_id ...]
//
// Or use the convenience environment variables:
//
//	BOOK_ID=<uuid>  MEMBER_IDS=<uuid1>,<uuid2>,...  go run ./scripts/concurrency_test.go
//
// What it does:
//  1. Fires N goroutines (one per member) all attempting to issue the same book simultaneously.
//  2. Prints how many were issued vs. refused because no copy was left.
//  3. Reads the book back and checks that the issued copies never exceed total_copies.
//
// Prerequisites:
//   - Server must be running (go run ./cmd serve).
//   - The book and N active members without fines must exist.

package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const defaultServerAddr = "http://localhost:8080"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var client = &http.Client{Timeout: 10 * time.Second}

type issueResult struct {
	MemberID   string
	StatusCode int
	Message    string
	Err        error
}

func main() {
	serverAddr := os.Getenv("SERVER_URL")
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}

	bookID := os.Getenv("BOOK_ID")
	var memberIDs []string
	if env := os.Getenv("MEMBER_IDS"); env != "" {
		memberIDs = strings.Split(env, ",")
	}

	args := os.Args[1:]
	if len(args) >= 1 {
		bookID = args[0]
	}
	if len(args) >= 2 {
		memberIDs = args[1:]
	}

	if bookID == "" {
		log.Fatal("Usage: BOOK_ID=<uuid> MEMBER_IDS=<m1,m2,...> go run ./scripts/concurrency_test.go\n" +
			"  or: go run ./scripts/concurrency_test.go <book_id> <member1_id> [member2_id ...]")
	}
	if len(memberIDs) == 0 {
		log.Fatal("At least one member ID must be provided via MEMBER_IDS env or positional args")
	}

	fmt.Printf("=== Library Issue Concurrency Test ===\n")
	fmt.Printf("Server  : %s\n", serverAddr)
	fmt.Printf("Book    : %s\n", bookID)
	fmt.Printf("Members : %d\n\n", len(memberIDs))

	results := make([]issueResult, len(memberIDs))
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i, mid := range memberIDs {
		wg.Add(1)
		go func(idx int, memberID string) {
			defer wg.Done()
			<-start
			results[idx] = attemptIssue(serverAddr, bookID, strings.TrimSpace(memberID))
		}(i, mid)
	}

	fmt.Println("Firing all requests simultaneously...")
	close(start)
	wg.Wait()
	fmt.Println("All requests completed.")
	fmt.Println()

	var issued, refused, failures int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("  [ERR ] member=%-38s err=%v\n", r.MemberID, r.Err)
		case r.StatusCode == http.StatusCreated:
			issued++
			fmt.Printf("  [ISSU] member=%-38s status=%d\n", r.MemberID, r.StatusCode)
		case r.StatusCode == http.StatusUnprocessableEntity:
			refused++
			fmt.Printf("  [REFU] member=%-38s status=%d %s\n", r.MemberID, r.StatusCode, r.Message)
		default:
			failures++
			fmt.Printf("  [FAIL] member=%-38s status=%d %s\n", r.MemberID, r.StatusCode, r.Message)
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Issued   : %d\n", issued)
	fmt.Printf("Refused  : %d\n", refused)
	fmt.Printf("Failures : %d\n", failures)
	fmt.Printf("Total    : %d\n\n", len(memberIDs))

	fmt.Println("--- Invariant Check ---")
	book, err := fetchBook(serverAddr, bookID)
	if err != nil {
		log.Fatalf("read book: %v", err)
	}
	fmt.Printf("total_copies=%d available_copies=%d issued_now=%d\n",
		book.TotalCopies, book.AvailableCopies, book.TotalCopies-book.AvailableCopies)
	if book.AvailableCopies < 0 || book.TotalCopies-book.AvailableCopies < issued {
		fmt.Println("[FAIL] availability does not match the successful issues")
		os.Exit(1)
	}
	fmt.Println("[ OK ] issued copies never exceeded total_copies")

	if failures > 0 {
		fmt.Printf("\n[WARNING] %d request(s) failed, check server logs for details.\n", failures)
		os.Exit(1)
	}
}

// attemptIssue sends POST /books/{bookID}/issue for the given member.
func attemptIssue(serverAddr, bookID, memberID string) issueResult {
	url := fmt.Sprintf("%s/books/%s/issue", serverAddr, bookID)
	body := fmt.Sprintf(`{"member_id":"%s"}`, memberID)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		return issueResult{MemberID: memberID, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Library-User", "stress-test")

	resp, err := client.Do(req)
	if err != nil {
		return issueResult{MemberID: memberID, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return issueResult{MemberID: memberID, StatusCode: resp.StatusCode, Err: fmt.Errorf("bad JSON: %s", raw)}
	}
	return issueResult{MemberID: memberID, StatusCode: resp.StatusCode, Message: parsed.Error}
}

type bookState struct {
	TotalCopies     int `json:"total_copies"`
	AvailableCopies int `json:"available_copies"`
}

func fetchBook(serverAddr, bookID string) (*bookState, error) {
	resp, err := client.Get(fmt.Sprintf("%s/books/%s", serverAddr, bookID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var b bookState
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}
