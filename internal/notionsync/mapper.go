package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/andresuchitra/duitku/internal/domain"
)

// BudgetTransactionToNotionProperties converts a budget transaction to the
// properties of the Notion Transactions database. The Record ID property is
// what the sync uses to match Notion pages back to stored records.
func BudgetTransactionToNotionProperties(tx *domain.BudgetTransaction) notionapi.Properties {
	title := tx.Description
	if title == "" {
		title = tx.Category
	}

	props := notionapi.Properties{
		"Description": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: title,
					},
				},
			},
		},
		"Record ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.ID,
					},
				},
			},
		},
		"Type": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(tx.Type),
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: tx.Amount,
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(tx.TransactionDate)
					return &d
				}(),
			},
		},
	}

	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		}
	}

	return props
}

// FinancialGoalToNotionProperties converts a financial goal to the
// properties of the Notion Goals database.
func FinancialGoalToNotionProperties(goal *domain.FinancialGoal) notionapi.Properties {
	props := notionapi.Properties{
		"Goal": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: goal.Name,
					},
				},
			},
		},
		"Record ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: goal.ID,
					},
				},
			},
		},
		"Target Amount": notionapi.NumberProperty{
			Number: goal.TargetAmount,
		},
		"Current Amount": notionapi.NumberProperty{
			Number: goal.CurrentAmount,
		},
		"Priority": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(goal.Priority),
			},
		},
	}

	if goal.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: goal.Category,
			},
		}
	}

	if goal.Deadline != nil {
		props["Deadline"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(*goal.Deadline)
					return &d
				}(),
			},
		}
	}

	return props
}

// extractRecordID extracts the stored record ID from a Notion page's
// properties. Returns empty string if not found.
func extractRecordID(page notionapi.Page) string {
	if prop, ok := page.Properties["Record ID"]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
