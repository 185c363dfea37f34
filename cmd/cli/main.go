package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "ticket":
		handleTicket(args)
	case "admin":
		handleAdmin(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: helpdesk auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		register(args[1:])
	case "login":
		login(args[1:])
	case "logout":
		logout()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleTicket(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: helpdesk ticket <list|create|show|set-status>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listTickets(args[1:])
	case "create":
		createTicket(args[1:])
	case "show":
		showTicket(args[1:])
	case "set-status":
		setTicketStatus(args[1:])
	default:
		fmt.Printf("unknown ticket command: %s\n", subCmd)
	}
}

func handleAdmin(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: helpdesk admin <show>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "show":
		showAdmin(args[1:])
	default:
		fmt.Printf("unknown admin command: %s\n", subCmd)
	}
}

// Auth commands

func register(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	kind := fs.String("kind", "client", "account kind: admin or client")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	phone := fs.String("phone", "", "phone number (optional)")

	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		fmt.Println("Error: name, email, and password are required")
		fs.PrintDefaults()
		return
	}
	if *kind != "admin" && *kind != "client" {
		fmt.Println("Error: kind must be admin or client")
		return
	}

	payload := map[string]string{
		"name":     *name,
		"email":    *email,
		"password": *password,
	}
	if *phone != "" {
		payload["phoneNumber"] = *phone
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/"+*kind+"s/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Registered %s: %s\n", *kind, *email)
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	kind := fs.String("kind", "client", "account kind: admin or client")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}
	if *kind != "admin" && *kind != "client" {
		fmt.Println("Error: kind must be admin or client")
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/"+*kind+"s/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logout() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

// Ticket commands

func listTickets(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/tickets", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}

	var tickets []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&tickets)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCREATED")
	for _, t := range tickets {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", t["id"], t["title"], t["status"], t["createdAt"])
	}
	w.Flush()
}

func createTicket(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "ticket title")
	description := fs.String("description", "", "ticket description")

	fs.Parse(args)

	if *title == "" || *description == "" {
		fmt.Println("Error: title and description are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"title": *title, "description": *description}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/tickets", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 201 {
		printError(resp)
		return
	}

	var ticket map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&ticket)
	fmt.Printf("✓ Ticket created: %v\n", ticket["id"])
}

func showTicket(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: helpdesk ticket show <ticket-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/tickets/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}

	var ticket map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&ticket)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%v\n", ticket["id"])
	fmt.Fprintf(w, "Title:\t%v\n", ticket["title"])
	fmt.Fprintf(w, "Status:\t%v\n", ticket["status"])
	fmt.Fprintf(w, "Description:\t%v\n", ticket["description"])
	fmt.Fprintf(w, "Created:\t%v\n", ticket["createdAt"])
	fmt.Fprintf(w, "Updated:\t%v\n", ticket["updatedAt"])
	w.Flush()
}

func setTicketStatus(args []string) {
	fs := flag.NewFlagSet("set-status", flag.ExitOnError)
	status := fs.String("status", "", "new status: Pending, InProgress, Completed, Cancelled")

	if len(args) < 1 {
		fmt.Println("Usage: helpdesk ticket set-status <ticket-id> -status <status>")
		return
	}
	id := args[0]
	fs.Parse(args[1:])

	if *status == "" {
		fmt.Println("Error: status is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"status": *status}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("PUT", getAPIURL()+"/tickets/"+id+"/status", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}

	fmt.Printf("✓ Ticket %s status set to %s\n", id, *status)
}

// Admin commands

func showAdmin(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: helpdesk admin show <admin-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/admins/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}

	var admin map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&admin)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%v\n", admin["id"])
	fmt.Fprintf(w, "Name:\t%v\n", admin["name"])
	fmt.Fprintf(w, "Email:\t%v\n", admin["email"])
	w.Flush()
}

// Helper functions

func printError(resp *http.Response) {
	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if msg, ok := body["error"].(string); ok {
		fmt.Printf("✗ %s (%d)\n", msg, resp.StatusCode)
		return
	}
	fmt.Printf("✗ request failed (%d)\n", resp.StatusCode)
}

func getAPIURL() string {
	if url := os.Getenv("HELPDESK_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.helpdesk/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.helpdesk", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`Helpdesk CLI

Usage:
  helpdesk <command> [options]

Commands:
  auth     Authentication (register, login, logout, who)
  ticket   Ticket operations (list, create, show, set-status)
  admin    Admin operations (show) - admin access required
  help     Show this help message

Environment Variables:
  HELPDESK_API    API endpoint (default: http://localhost:8080/api)

Examples:
  helpdesk auth register -kind client -name Ana -email ana@example.com -password pass
  helpdesk auth login -kind admin -email root@example.com -password pass
  helpdesk ticket list
  helpdesk ticket set-status 42 -status Completed
`)
}
