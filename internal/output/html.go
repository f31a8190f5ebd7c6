package output

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"
)

// htmlReportData contains all data needed for the HTML report template.
type htmlReportData struct {
	Report     Report
	LevelsJSON string
}

// GenerateHTMLReport generates a standalone HTML report with embedded charts.
func GenerateHTMLReport(w io.Writer, report Report) error {
	levelsJSON, err := json.Marshal(report.Summary.Levels)
	if err != nil {
		return fmt.Errorf("failed to marshal level stats: %w", err)
	}

	data := htmlReportData{
		Report:     report,
		LevelsJSON: string(levelsJSON),
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatPercent": func(f float64) string {
			return fmt.Sprintf("%.1f", f)
		},
		"formatTime": func(t time.Time) string {
			return t.Format(time.RFC3339)
		},
		"formatMs": func(ms float64) string {
			return fmt.Sprintf("%.0f ms", ms)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Tokensweep Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #667eea;
        }
        .card h3 {
            font-size: 0.9rem;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 10px;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .card .subvalue {
            font-size: 0.85rem;
            color: #6c757d;
            margin-top: 5px;
        }
        .card.success {
            border-left-color: #10b981;
        }
        .card.error {
            border-left-color: #ef4444;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        .chart-container {
            background: white;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 30px;
            border: 1px solid #e5e7eb;
        }
        .chart-container h3 {
            font-size: 1.1rem;
            margin-bottom: 15px;
            color: #4b5563;
        }
        .chart {
            width: 100%;
            height: 300px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        tr:hover {
            background: #f8f9fa;
        }
        .badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 0.85rem;
            font-weight: 600;
            background: #d1fae5;
            color: #065f46;
        }
    </style>
    <script src="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.iife.min.js"></script>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.min.css">
</head>
<body>
    <div class="container">
        <header>
            <h1>Tokensweep Report</h1>
            <div class="meta" style="margin-top: 5px;">Target: {{.Report.Target}} | Model: {{.Report.Model}} | Flavor: {{.Report.Flavor}}</div>
            <div class="meta">Generated: {{formatTime .Report.GeneratedAt}}{{if .Report.Streaming}} | Streaming{{end}}</div>
        </header>

        <div class="content">
            <!-- Summary Cards -->
            <div class="grid">
                <div class="card">
                    <h3>Best Throughput</h3>
                    <div class="value">{{formatFloat .Report.Summary.BestTokensPerSec}}</div>
                    <div class="subvalue">tok/s at level {{.Report.Summary.BestLevel}}</div>
                </div>
                <div class="card">
                    <h3>Total Probes</h3>
                    <div class="value">{{.Report.Summary.TotalProbes}}</div>
                </div>
                <div class="card success">
                    <h3>Successful</h3>
                    <div class="value">{{.Report.Summary.TotalSuccesses}}</div>
                    <div class="subvalue">{{formatPercent .Report.Summary.SuccessRate}}%</div>
                </div>
                <div class="card error">
                    <h3>Failed</h3>
                    <div class="value">{{.Report.Summary.TotalFailures}}</div>
                </div>
            </div>

            <!-- Charts Section -->
            <div class="section">
                <h2>Scaling Behavior</h2>

                <div class="chart-container">
                    <h3>Throughput by Concurrency Level</h3>
                    <div id="rate-chart" class="chart"></div>
                </div>

                <div class="chart-container">
                    <h3>Latency by Concurrency Level (ms)</h3>
                    <div id="latency-chart" class="chart"></div>
                </div>
            </div>

            <!-- Level Breakdown -->
            <div class="section">
                <h2>Level Breakdown</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Level</th>
                            <th>Tok/s</th>
                            <th>Tokens</th>
                            <th>Success Rate</th>
                            <th>Avg Latency</th>
                            <th>Efficiency</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Report.Summary.Levels}}
                        <tr>
                            <td><strong>{{.Level}}</strong>{{if eq .Level $.Report.Summary.BestLevel}} <span class="badge">BEST</span>{{end}}</td>
                            <td>{{formatFloat .TokensPerSec}}</td>
                            <td>{{.TotalTokens}}</td>
                            <td>{{formatPercent .SuccessRate}}%</td>
                            <td>{{formatMs .AvgLatencyMs}}</td>
                            <td>{{formatPercent .Efficiency}}%</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
        </div>
    </div>

    <script>
        const levelsJSON = {{.LevelsJSON}};
        const levels = JSON.parse(levelsJSON);

        if (levels && levels.length > 0) {
            const xs = levels.map(d => d.level);

            new uPlot({
                title: "Tokens Per Second",
                width: document.getElementById('rate-chart').offsetWidth,
                height: 300,
                scales: { x: { time: false } },
                series: [
                    { label: "Level" },
                    {
                        label: "Tok/s",
                        stroke: "#667eea",
                        fill: "rgba(102, 126, 234, 0.1)",
                        width: 2
                    }
                ],
                axes: [
                    { label: "Concurrency Level" },
                    { label: "Tokens/sec" }
                ]
            }, [xs, levels.map(d => d.tokens_per_sec)], document.getElementById('rate-chart'));

            new uPlot({
                title: "Latency",
                width: document.getElementById('latency-chart').offsetWidth,
                height: 300,
                scales: { x: { time: false } },
                series: [
                    { label: "Level" },
                    {
                        label: "Avg",
                        stroke: "#10b981",
                        width: 2
                    },
                    {
                        label: "Min",
                        stroke: "#f59e0b",
                        width: 2
                    },
                    {
                        label: "Max",
                        stroke: "#ef4444",
                        width: 2
                    }
                ],
                axes: [
                    { label: "Concurrency Level" },
                    { label: "Latency (ms)" }
                ]
            }, [xs, levels.map(d => d.avg_latency_ms), levels.map(d => d.min_latency_ms), levels.map(d => d.max_latency_ms)], document.getElementById('latency-chart'));
        }
    </script>
</body>
</html>
`
