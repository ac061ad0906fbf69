package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	coreconfig "github.com/mervel/storefront/core/config"
	"github.com/mervel/storefront/ui/mcp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the storefront MCP server using SSE",
	Long:  `Start a storefront MCP (Model Context Protocol) server using Server-Sent Events (SSE) transport. Agents can browse the catalog, quote carts and track orders.`,
	Run:   mcpServer,
}

var (
	mcpHost string
	mcpPort string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpPort, "port", "", "Port for the SSE MCP server (default MCP_PORT or 8080)")
	mcpCmd.Flags().StringVar(&mcpHost, "host", "", "Host for the SSE MCP server (default MCP_HOST or localhost)")
}

func mcpServer(_ *cobra.Command, _ []string) {
	cfg := coreconfig.Global
	if mcpHost != "" {
		cfg.MCP.Host = mcpHost
	}
	if mcpPort != "" {
		cfg.MCP.Port = mcpPort
	}

	mcpServer := server.NewMCPServer(
		cfg.Storefront.Name+" Storefront MCP Server",
		cfg.App.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
	)

	storefrontHandler := mcp.InitMcpStorefront(productService, cartService, trackingService)
	storefrontHandler.AddStorefrontTools(mcpServer)

	sseServer := server.NewSSEServer(
		mcpServer,
		server.WithBaseURL(fmt.Sprintf("http://%s:%s", cfg.MCP.Host, cfg.MCP.Port)),
		server.WithKeepAlive(true),
	)

	addr := fmt.Sprintf("%s:%s", cfg.MCP.Host, cfg.MCP.Port)
	logrus.Printf("Starting storefront MCP SSE server on %s", addr)
	logrus.Printf("SSE endpoint: http://%s/sse", addr)
	logrus.Printf("Message endpoint: http://%s/message", addr)

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[MCP] Reception of termination signal, shutting down gracefully...")
		StopApp()
		os.Exit(0)
	}()

	if err := sseServer.Start(addr); err != nil {
		logrus.Fatalf("Failed to start SSE server: %v", err)
	}
}
