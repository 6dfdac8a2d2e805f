package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/bot/mocks"
	"gitlab.com/yelinaung/finflow/internal/gemini"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

const nilMessageReturnsEarly = "nil message returns early"

type stubClassifier struct {
	result *gemini.Classification
	err    error
	calls  int
	seen   []string
}

func (s *stubClassifier) Classify(_ context.Context, _ string, _ models.TransactionType, categories []string) (*gemini.Classification, error) {
	s.calls++
	s.seen = categories
	return s.result, s.err
}

func TestHandleStartAndHelpCore(t *testing.T) {
	b := &Bot{}
	ctx := context.Background()

	t.Run(nilMessageReturnsEarly, func(t *testing.T) {
		mockBot := mocks.NewMockBot()
		b.handleStartCore(ctx, mockBot, &tgmodels.Update{})
		b.handleHelpCore(ctx, mockBot, &tgmodels.Update{})
		require.Zero(t, mockBot.SentMessageCount())
	})

	t.Run("start greets the user by name", func(t *testing.T) {
		mockBot := send(t, b.handleStartCore, "/start")
		msg := mockBot.LastSentMessage()
		require.Contains(t, msg.Text, "Welcome, Test!")
		require.Equal(t, tgmodels.ParseModeHTML, msg.ParseMode)
	})

	t.Run("help lists every command", func(t *testing.T) {
		text := send(t, b.handleHelpCore, "/help").LastSentMessage().Text
		for _, cmd := range []string{"/expense", "/income", "/transfer", "/addbudget", "/forecast", "/export", "/chart"} {
			require.Contains(t, text, cmd)
		}
	})
}

func TestHandleCategoriesCore(t *testing.T) {
	b, _ := setupTestBot(t)

	text := send(t, b.handleCategoriesCore, "/categories").LastSentMessage().Text
	require.Contains(t, text, "Expense Categories")
	require.Contains(t, text, "Income Categories")
	require.Contains(t, text, "Food")
	require.Contains(t, text, "Salary")
	require.Less(t, strings.Index(text, "Expense Categories"), strings.Index(text, "Income Categories"))
}

func TestRecordCommands(t *testing.T) {
	ctx := context.Background()
	expense := func(b *Bot) func(context.Context, TelegramAPI, *tgmodels.Update) {
		return func(ctx context.Context, tg TelegramAPI, u *tgmodels.Update) {
			b.handleRecordCore(ctx, tg, u, "/expense", models.TypeExpense)
		}
	}
	income := func(b *Bot) func(context.Context, TelegramAPI, *tgmodels.Update) {
		return func(ctx context.Context, tg TelegramAPI, u *tgmodels.Update) {
			b.handleRecordCore(ctx, tg, u, "/income", models.TypeIncome)
		}
	}

	t.Run("expense with hashtag category is recorded", func(t *testing.T) {
		b, _ := setupTestBot(t)

		msg := send(t, expense(b), "/expense 25000 team lunch #food").LastSentMessage()
		require.Contains(t, msg.Text, "Expense Recorded")
		require.Contains(t, msg.Text, "Rp 25,000")
		require.Contains(t, msg.Text, "Food")
		require.Contains(t, msg.Text, "team lunch")

		txs, err := b.svc.Transactions.All(ctx, testUserID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		require.Equal(t, "Food", txs[0].Category.Name)
		require.Equal(t, "team lunch", txs[0].Note)
		require.True(t, dec("25000").Equal(txs[0].Amount))
	})

	t.Run("income is recorded under an income category", func(t *testing.T) {
		b, _ := setupTestBot(t)

		msg := send(t, income(b), "/income 5.000.000 october payroll #Salary").LastSentMessage()
		require.Contains(t, msg.Text, "Income Recorded")
		require.Contains(t, msg.Text, "Rp 5,000,000")

		txs, err := b.svc.Transactions.All(ctx, testUserID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		require.Equal(t, models.TypeIncome, txs[0].Type)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		b, _ := setupTestBot(t)

		msg := send(t, expense(b), "/expense 100 flight #Travel").LastSentMessage()
		require.Contains(t, msg.Text, "Unknown expense category")

		txs, err := b.svc.Transactions.All(ctx, testUserID)
		require.NoError(t, err)
		require.Empty(t, txs)
	})

	t.Run("missing amount shows usage", func(t *testing.T) {
		b, _ := setupTestBot(t)
		require.Contains(t, send(t, expense(b), "/expense lunch").LastSentMessage().Text, "Usage")
	})

	t.Run("free text falls back to Other without a classifier", func(t *testing.T) {
		b, _ := setupTestBot(t)

		send(t, b.defaultHandlerCore, "15k coffee")

		txs, err := b.svc.Transactions.All(ctx, testUserID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		require.Equal(t, models.OtherCategoryName, txs[0].Category.Name)
		require.True(t, dec("15000").Equal(txs[0].Amount))
	})

	t.Run("free text uses the classifier suggestion", func(t *testing.T) {
		b, _ := setupTestBot(t)
		stub := &stubClassifier{result: &gemini.Classification{Category: "Transportation", SpendingType: models.SpendingNeed, Confidence: 0.9}}
		b.classifier = stub

		msg := send(t, b.defaultHandlerCore, "30000 grab to office").LastSentMessage()
		require.Contains(t, msg.Text, "Transportation")
		require.Contains(t, msg.Text, "need")
		require.Equal(t, 1, stub.calls)
		require.Contains(t, stub.seen, "Food")
		require.NotContains(t, stub.seen, "Salary")

		txs, err := b.svc.Transactions.All(ctx, testUserID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		require.Equal(t, models.SpendingNeed, txs[0].SpendingType)
	})

	t.Run("classifier failure falls back to Other", func(t *testing.T) {
		b, _ := setupTestBot(t)
		b.classifier = &stubClassifier{err: errors.New("quota exceeded")}

		msg := send(t, b.defaultHandlerCore, "30000 mystery").LastSentMessage()
		require.Contains(t, msg.Text, "Expense Recorded")
		require.Contains(t, msg.Text, models.OtherCategoryName)
	})

	t.Run("text without an amount is not understood", func(t *testing.T) {
		b, _ := setupTestBot(t)
		require.Contains(t, send(t, b.defaultHandlerCore, "hello there").LastSentMessage().Text, "didn't understand")
	})

	t.Run("delete removes a recorded transaction", func(t *testing.T) {
		b, _ := setupTestBot(t)
		send(t, expense(b), "/expense 100 gum")

		txs, err := b.svc.Transactions.All(ctx, testUserID)
		require.NoError(t, err)
		require.Len(t, txs, 1)

		msg := send(t, b.handleDeleteCore, fmt.Sprintf("/delete %d", txs[0].ID)).LastSentMessage()
		require.Contains(t, msg.Text, "deleted")

		msg = send(t, b.handleDeleteCore, fmt.Sprintf("/delete %d", txs[0].ID)).LastSentMessage()
		require.Equal(t, "❌ Not found.", msg.Text)
	})
}

func TestAccountsAndTransfer(t *testing.T) {
	b, _ := setupTestBot(t)
	ctx := context.Background()

	require.Contains(t, send(t, b.handleAccountsCore, "/accounts").LastSentMessage().Text, "No accounts yet")

	require.Contains(t, send(t, b.handleAddAccountCore, "/addaccount bank 1000000 BCA Main").LastSentMessage().Text, "BCA Main")
	require.Contains(t, send(t, b.handleAddAccountCore, "/addaccount e_wallet 500k GoPay").LastSentMessage().Text, "Rp 500,000")
	require.Contains(t, send(t, b.handleAddAccountCore, "/addaccount savings 1 X").LastSentMessage().Text, "Usage")

	accounts, err := b.svc.Accounts.List(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	from, to := accounts[0].Account.ID, accounts[1].Account.ID
	if accounts[0].Account.Name != "BCA Main" {
		from, to = to, from
	}

	text := send(t, b.handleAccountsCore, "/accounts").LastSentMessage().Text
	require.Contains(t, text, "Total: <b>Rp 1,500,000</b>")

	t.Run("transfer moves money between accounts", func(t *testing.T) {
		msg := send(t, b.handleTransferCore, fmt.Sprintf("/transfer %d %d 200000 top up", from, to)).LastSentMessage()
		require.Contains(t, msg.Text, "Transfer Completed")
		require.Contains(t, msg.Text, "Rp 800,000")
		require.Contains(t, msg.Text, "Rp 700,000")

		txs, err := b.svc.Transactions.All(ctx, testUserID)
		require.NoError(t, err)
		require.Len(t, txs, 2)
	})

	t.Run("transfer to the same account is rejected", func(t *testing.T) {
		msg := send(t, b.handleTransferCore, fmt.Sprintf("/transfer %d %d 1000", from, from)).LastSentMessage()
		require.True(t, strings.HasPrefix(msg.Text, "❌"))

		txs, err := b.svc.Transactions.All(ctx, testUserID)
		require.NoError(t, err)
		require.Len(t, txs, 2)
	})

	t.Run("malformed transfer shows usage", func(t *testing.T) {
		require.Contains(t, send(t, b.handleTransferCore, "/transfer 1 two 100").LastSentMessage().Text, "Usage")
	})
}

func TestBudgetCommands(t *testing.T) {
	b, _ := setupTestBot(t)

	require.Contains(t, send(t, b.handleBudgetsCore, "/budgets").LastSentMessage().Text, "No active budgets")
	require.Contains(t, send(t, b.handleAlertsCore, "/alerts").LastSentMessage().Text, "on track")

	msg := send(t, b.handleAddBudgetCore, "/addbudget monthly 1000 #Food").LastSentMessage()
	require.Contains(t, msg.Text, "Budget <b>Food</b> created")
	require.Contains(t, msg.Text, "alert at 80%")

	msg = send(t, b.handleAddBudgetCore, "/addbudget weekly 50000").LastSentMessage()
	require.Contains(t, msg.Text, service.OverallBudgetName)

	require.Contains(t, send(t, b.handleAddBudgetCore, "/addbudget daily 1000").LastSentMessage().Text, "Usage")
	require.Contains(t, send(t, b.handleAddBudgetCore, "/addbudget monthly 1000 #Salary").LastSentMessage().Text, "Unknown expense category")

	t.Run("expense over budget reports the alert", func(t *testing.T) {
		msg := send(t, func(ctx context.Context, tg TelegramAPI, u *tgmodels.Update) {
			b.handleRecordCore(ctx, tg, u, "/expense", models.TypeExpense)
		}, "/expense 1200 snacks #Food").LastSentMessage()
		require.Contains(t, msg.Text, "has been exceeded")
	})

	t.Run("budgets show progress and summary", func(t *testing.T) {
		text := send(t, b.handleBudgetsCore, "/budgets").LastSentMessage().Text
		require.Contains(t, text, "🔴 <b>Food</b>")
		require.Contains(t, text, progressBar(100))
		require.Contains(t, text, "🔴 1")
	})

	t.Run("alerts list exceeded budgets", func(t *testing.T) {
		text := send(t, b.handleAlertsCore, "/alerts").LastSentMessage().Text
		require.Contains(t, text, "Budget Alerts")
		require.Contains(t, text, "🚨")
	})
}

func TestReportCommands(t *testing.T) {
	b, _ := setupTestBot(t)
	record := func(text string, txType models.TransactionType) {
		send(t, func(ctx context.Context, tg TelegramAPI, u *tgmodels.Update) {
			b.handleRecordCore(ctx, tg, u, "/"+string(txType), txType)
		}, text)
	}
	record("/income 1000000 pay #Salary", models.TypeIncome)
	record("/expense 250000 groceries #Food", models.TypeExpense)

	t.Run("report summarises the month", func(t *testing.T) {
		text := send(t, b.handleReportCore, "/report").LastSentMessage().Text
		require.Contains(t, text, "Report 2026-10")
		require.Contains(t, text, "Rp 1,000,000")
		require.Contains(t, text, "Remaining: <b>Rp 750,000</b>")
		require.Contains(t, text, "1. Food")
	})

	t.Run("report rejects a bad month", func(t *testing.T) {
		require.Contains(t, send(t, b.handleReportCore, "/report 2026-13").LastSentMessage().Text, "Usage")
	})

	t.Run("forecast shows the projection summary", func(t *testing.T) {
		text := send(t, b.handleForecastCore, "/forecast").LastSentMessage().Text
		require.Contains(t, text, "Forecast")
		require.Contains(t, text, "Balance now: <b>Rp 750,000</b>")
	})

	t.Run("insights include the weekly reflection", func(t *testing.T) {
		text := send(t, b.handleInsightsCore, "/insights 2026-10").LastSentMessage().Text
		require.Contains(t, text, "Insights 2026-10")
		require.Contains(t, text, "Week 2026-W43")
	})
}

func TestExportAndChartCommands(t *testing.T) {
	b, _ := setupTestBot(t)

	require.Contains(t, send(t, b.handleExportCore, "/export").LastSentMessage().Text, "No transactions")
	require.Contains(t, send(t, b.handleChartCore, "/chart").LastSentMessage().Text, "No expenses found for 2026-10")

	send(t, func(ctx context.Context, tg TelegramAPI, u *tgmodels.Update) {
		b.handleRecordCore(ctx, tg, u, "/expense", models.TypeExpense)
	}, "/expense 25000 lunch #Food")

	t.Run("export sends a CSV document", func(t *testing.T) {
		mockBot := send(t, b.handleExportCore, "/export")
		require.Equal(t, 1, mockBot.SentDocumentCount())
		doc := mockBot.LastSentDocument()
		require.Equal(t, "transactions_2026-10-21.csv", doc.Filename)
		require.Contains(t, string(doc.Data), "ID,Date,Type,Category,Amount,Note,Spending Type")
		require.Contains(t, string(doc.Data), "2026-10-21,expense,Food,25000.00,lunch")
	})

	t.Run("export of one month is named after it", func(t *testing.T) {
		mockBot := send(t, b.handleExportCore, "/export 2026-10")
		require.Equal(t, 1, mockBot.SentDocumentCount())
		require.Equal(t, "transactions_2026-10.csv", mockBot.LastSentDocument().Filename)

		require.Contains(t, send(t, b.handleExportCore, "/export 2026-09").LastSentMessage().Text, "No transactions")
		require.Contains(t, send(t, b.handleExportCore, "/export October").LastSentMessage().Text, "Usage")
	})

	t.Run("chart sends a PNG document", func(t *testing.T) {
		mockBot := send(t, b.handleChartCore, "/chart 2026-10")
		require.Equal(t, 1, mockBot.SentDocumentCount())
		doc := mockBot.LastSentDocument()
		require.Equal(t, "chart_2026-10.png", doc.Filename)
		require.Contains(t, doc.Caption, "Rp 25,000")
		require.GreaterOrEqual(t, len(doc.Data), 4)
		require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, doc.Data[:4])
	})

	t.Run("send failure is reported", func(t *testing.T) {
		mockBot := mocks.NewMockBot()
		mockBot.SendDocumentError = errors.New("file too big")
		b.handleExportCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/export"))
		require.Contains(t, mockBot.LastSentMessage().Text, "Failed to send export")
	})
}

func TestUserFailure(t *testing.T) {
	t.Run("input errors are shown", func(t *testing.T) {
		err := fmt.Errorf("create: %w", fmt.Errorf("%w: name is required", service.ErrInvalidInput))
		require.Contains(t, userFailure("create account", err), "name is required")
	})

	t.Run("unexpected errors are hidden", func(t *testing.T) {
		got := userFailure("create account", errors.New("connection refused"))
		require.Equal(t, "❌ Failed to create account. Please try again.", got)
	})
}
