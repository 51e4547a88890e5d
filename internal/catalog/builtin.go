package catalog

import "github.com/miradorstack/aura/internal/models"

const (
	CostAnomaly            models.ScenarioID = "cost_anomaly"
	SecurityVulnerability  models.ScenarioID = "security_vulnerability"
	PerformanceDegradation models.ScenarioID = "performance_degradation"
)

// Builtin returns the canonical scenarios compiled into the binary.
func Builtin() []models.Scenario {
	return []models.Scenario{
		{
			ID:      CostAnomaly,
			Title:   "Cost Spike - VM Running Unused",
			Aliases: []string{"cost_spike"},
			Alert: models.AlertRecord{
				AlertID:      "cost-alert-001",
				Type:         "billing_anomaly",
				Severity:     models.SeverityHigh,
				Resource:     "expensive-vm",
				ResourcePath: "projects/{project}/zones/us-central1-a/instances/expensive-vm",
				Duration:     "18 hours",
				Description:  "VM running with 2% CPU usage - likely abandoned workload",
				Metrics: []models.Metric{
					{Name: "cost_increase", Value: "300%"},
					{Name: "current_cost", Value: "$45/day"},
					{Name: "previous_cost", Value: "$15/day"},
					{Name: "cpu_utilization", Value: "2%"},
					{Name: "memory_usage", Value: "15%"},
					{Name: "uptime", Value: "18 hours continuous"},
				},
			},
			Analysis: models.AnalysisRecord{
				Confidence: 95,
				RiskLevel:  3,
				Urgency:    models.UrgencyMedium,
				RootCause:  "VM instance running with minimal CPU utilization, indicating abandoned workload",
				ContributingFactors: []string{
					"No automatic shutdown policies configured",
					"VM oversized for actual workload",
					"Missing cost monitoring alerts",
				},
				RiskAssessment: models.RiskAssessment{
					Financial:   "Medium - $30/day unnecessary cost",
					Operational: "Low - non-critical workload",
					Security:    "Low",
				},
			},
			Plan: models.RemediationPlan{
				RecommendedAction: "shutdown_unused_instance",
				Action:            "Stop unused VM instance",
				EstimatedTime:     "2 minutes",
				ExpectedOutcome:   "$30/day cost savings",
				SuccessRate:       95,
				CommandScript: `# Stop expensive VM
gcloud compute instances stop expensive-vm --zone=us-central1-a

# Create backup snapshot
gcloud compute disks snapshot expensive-vm --snapshot-names=backup-$(date +%Y%m%d)`,
				SafetyMeasures: []string{
					"Backup snapshot created",
					"Non-critical workload verified",
					"Can restart anytime",
				},
				RollbackCommand:  "gcloud compute instances start expensive-vm --zone=us-central1-a",
				ApprovalRequired: true,
			},
			Impact: models.ImpactSummary{
				Title: "Cost Optimization Complete",
				Details: []string{
					"VM 'expensive-vm' safely stopped",
					"Cost reduced from $45/day to $15/day",
					"Monthly savings: $900",
					"Backup created for safety",
				},
			},
			Execution: models.ExecutionResult{
				Status:             models.ExecutionSuccess,
				ExecutionTime:      "2.3 seconds",
				CommandsExecuted:   2,
				CommandsTotal:      2,
				Outcome:            "VM 'expensive-vm' successfully stopped",
				VerifiedImpact:     "$30/day verified",
				FollowUpMonitoring: "Will monitor for 24 hours to ensure no business impact",
			},
		},
		{
			ID:      SecurityVulnerability,
			Title:   "Security Breach - Open Firewall",
			Aliases: []string{"security_breach"},
			Alert: models.AlertRecord{
				AlertID:      "sec-alert-001",
				Type:         "firewall_violation",
				Severity:     models.SeverityCritical,
				Resource:     "allow-all-firewall",
				ResourcePath: "projects/{project}/global/firewalls/allow-all-traffic",
				Duration:     "2 days",
				Description:  "Firewall rule allows unrestricted access from 0.0.0.0/0",
				Metrics: []models.Metric{
					{Name: "source_ranges", Value: "0.0.0.0/0"},
					{Name: "allowed_ports", Value: "0-65535"},
					{Name: "protocol", Value: "tcp"},
					{Name: "targets", Value: "all instances"},
					{Name: "created", Value: "2 days ago"},
				},
			},
			Analysis: models.AnalysisRecord{
				Confidence: 98,
				RiskLevel:  9,
				Urgency:    models.UrgencyCritical,
				RootCause:  "Firewall rule permits unrestricted access from any IP on all ports",
				ContributingFactors: []string{
					"Rule likely created for testing and forgotten",
					"No regular security policy audits",
					"Missing principle of least privilege",
				},
				RiskAssessment: models.RiskAssessment{
					Financial:   "High - potential data breach costs",
					Operational: "High - system compromise possible",
					Security:    "Critical - immediate attention required",
				},
			},
			Plan: models.RemediationPlan{
				RecommendedAction: "replace_firewall_rule",
				Action:            "Replace firewall rule",
				EstimatedTime:     "1 minute",
				ExpectedOutcome:   "99% attack surface reduction",
				SuccessRate:       92,
				CommandScript: `# Remove dangerous rule
gcloud compute firewall-rules delete allow-all-traffic --quiet

# Create secure replacement
gcloud compute firewall-rules create secure-web-access --allow tcp:80,tcp:443`,
				SafetyMeasures: []string{
					"Replacement rule created immediately",
					"Only essential ports exposed",
					"Change logged for audit",
				},
				RollbackCommand:  "# Not recommended - recreates vulnerability",
				ApprovalRequired: true,
			},
			Impact: models.ImpactSummary{
				Title: "Security Vulnerability Eliminated",
				Details: []string{
					"Dangerous firewall rule removed",
					"Secure replacement created",
					"Attack surface reduced by 99%",
					"Critical risk eliminated",
				},
			},
			Execution: models.ExecutionResult{
				Status:             models.ExecutionSuccess,
				ExecutionTime:      "1.8 seconds",
				CommandsExecuted:   2,
				CommandsTotal:      2,
				Outcome:            "Dangerous firewall rule removed, secure replacement created",
				VerifiedImpact:     "Attack surface reduced by 99%",
				FollowUpMonitoring: "Security scan scheduled for 1 hour to verify fix",
			},
		},
		{
			ID:      PerformanceDegradation,
			Title:   "Performance Issue - Low Memory",
			Aliases: []string{"performance_issue"},
			Alert: models.AlertRecord{
				AlertID:      "perf-alert-001",
				Type:         "resource_exhaustion",
				Severity:     models.SeverityMedium,
				Resource:     "web-server",
				ResourcePath: "projects/{project}/zones/us-west1-a/instances/web-server",
				Duration:     "35 minutes",
				Description:  "Memory usage sustained above 90%",
				Metrics: []models.Metric{
					{Name: "memory_usage", Value: "94%"},
					{Name: "cpu_usage", Value: "67%"},
					{Name: "disk_usage", Value: "78%"},
					{Name: "duration", Value: "35 minutes"},
					{Name: "affected_services", Value: "web-frontend"},
				},
			},
			Analysis: models.AnalysisRecord{
				Confidence: 87,
				RiskLevel:  5,
				Urgency:    models.UrgencyHigh,
				RootCause:  "Web server undersized for current traffic load causing memory exhaustion",
				ContributingFactors: []string{
					"Traffic increased beyond instance capacity",
					"No auto-scaling configured",
					"Memory-intensive apps not optimized",
				},
				RiskAssessment: models.RiskAssessment{
					Financial:   "Medium - potential revenue loss from slow site",
					Operational: "Medium - service degradation",
					Security:    "Low",
				},
			},
			Plan: models.RemediationPlan{
				RecommendedAction: "upgrade_instance_type",
				Action:            "Upgrade instance type",
				EstimatedTime:     "4 minutes",
				ExpectedOutcome:   "2x memory capacity",
				SuccessRate:       89,
				CommandScript: `# Stop for upgrade
gcloud compute instances stop web-server --zone=us-west1-a

# Upgrade machine type
gcloud compute instances set-machine-type web-server --machine-type=n1-standard-4

# Restart upgraded server
gcloud compute instances start web-server --zone=us-west1-a`,
				SafetyMeasures: []string{
					"Maintenance window scheduled",
					"Health checks configured",
					"Gradual traffic restoration",
				},
				RollbackCommand:  "gcloud compute instances set-machine-type web-server --machine-type=n1-standard-2",
				ApprovalRequired: true,
			},
			Impact: models.ImpactSummary{
				Title: "Performance Issue Resolved",
				Details: []string{
					"Server upgraded to n1-standard-4",
					"Memory doubled from 8GB to 16GB",
					"Performance restored to optimal",
					"Expected 70% reduction in memory pressure",
				},
			},
			Execution: models.ExecutionResult{
				Status:             models.ExecutionSuccess,
				ExecutionTime:      "4.7 seconds",
				CommandsExecuted:   3,
				CommandsTotal:      3,
				Outcome:            "Web server upgraded from n1-standard-2 to n1-standard-4",
				VerifiedImpact:     "Memory increased from 8GB to 16GB",
				FollowUpMonitoring: "Performance metrics will be monitored for 2 hours",
			},
		},
	}
}
