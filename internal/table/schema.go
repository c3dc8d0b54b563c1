package table

import "strconv"

// NumColumns is the fixed width every row in every table carries.
// Column 0 is always the business key; column 1 is always the
// searchable symbol column.
const NumColumns = 50

// ColumnType describes how a column's wire text is parsed into a Cell.
type ColumnType uint8

const (
	ColText ColumnType = iota
	ColInt
	ColDecimal
	ColTimestamp
)

// Schema names and types the NumColumns columns of one table.
type Schema struct {
	Name    string
	Columns [NumColumns]string
	Types   [NumColumns]ColumnType
}

// ColumnIndex returns the zero-based index of name, or -1 if absent.
func (s *Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// OrderBookSchema is the fixed 50-column layout for the order book table.
// The trailing Tag1..Tag10, Value1..Value5, Counter1 block brings the
// legacy 49-field generator (see original_source/) up to the canonical
// 50-column width required by spec — Counter1 is the padded column.
var OrderBookSchema = buildOrderBookSchema()

// TradeBookSchema is the fixed 50-column layout for the trade book table.
var TradeBookSchema = buildTradeBookSchema()

func buildOrderBookSchema() *Schema {
	names := []string{
		"OrderId", "Symbol", "Side", "Price", "Quantity", "Timestamp", "Status",
		"OrderType", "TimeInForce", "StopPrice", "LimitPrice", "FilledQuantity",
		"RemainingQuantity", "AvgFillPrice", "Exchange", "ClientId", "AccountId",
		"TraderId", "Strategy", "Portfolio", "RiskLimit", "ExposureAmount",
		"RiskGroup", "MarginRequirement", "Currency", "BidPrice", "AskPrice",
		"MidPrice", "SpreadBps", "BidSize", "AskSize", "LastPrice", "Volume", "VWAP",
	}
	for i := 1; i <= 10; i++ {
		names = append(names, sprintTag("Tag", i))
	}
	for i := 1; i <= 5; i++ {
		names = append(names, sprintTag("Value", i))
	}
	names = append(names, "Counter1")

	s := &Schema{Name: "OrderBook"}
	copy(s.Columns[:], names)
	decimalCols := map[string]bool{
		"Price": true, "StopPrice": true, "LimitPrice": true, "AvgFillPrice": true,
		"RiskLimit": true, "ExposureAmount": true, "MarginRequirement": true,
		"BidPrice": true, "AskPrice": true, "MidPrice": true, "SpreadBps": true,
		"LastPrice": true, "VWAP": true,
	}
	intCols := map[string]bool{
		"Quantity": true, "FilledQuantity": true, "RemainingQuantity": true,
		"BidSize": true, "AskSize": true, "Volume": true,
	}
	for i, n := range s.Columns {
		switch {
		case n == "Timestamp":
			s.Types[i] = ColTimestamp
		case decimalCols[n]:
			s.Types[i] = ColDecimal
		case intCols[n]:
			s.Types[i] = ColInt
		default:
			s.Types[i] = ColText
		}
	}
	return s
}

func buildTradeBookSchema() *Schema {
	names := []string{
		"TradeId", "Symbol", "Side", "Price", "Quantity", "Timestamp", "Status",
		"BuyOrderId", "SellOrderId", "Commission", "Fees", "NetAmount",
		"SettlementDate", "ClearingFirm", "Exchange", "BuyerId", "SellerId",
		"BuyerAccount", "SellerAccount", "ExecutingBroker", "RiskGroup",
		"ExposureImpact", "ComplianceStatus", "RegReportingStatus", "Currency",
		"MarketPrice", "PriceDeviation", "MarketImpact", "MarketVolume", "VWAP",
		"TWAPPrice", "TradeCondition",
	}
	for i := 1; i <= 10; i++ {
		names = append(names, sprintTag("Tag", i))
	}
	for i := 1; i <= 5; i++ {
		names = append(names, sprintTag("Value", i))
	}
	names = append(names, "Counter1", "Counter2", "Counter3")

	s := &Schema{Name: "TradeBook"}
	copy(s.Columns[:], names)
	decimalCols := map[string]bool{
		"Price": true, "Commission": true, "Fees": true, "NetAmount": true,
		"ExposureImpact": true, "MarketPrice": true, "PriceDeviation": true,
		"MarketImpact": true, "VWAP": true, "TWAPPrice": true,
	}
	intCols := map[string]bool{"Quantity": true, "MarketVolume": true}
	for i, n := range s.Columns {
		switch {
		case n == "Timestamp":
			s.Types[i] = ColTimestamp
		case decimalCols[n]:
			s.Types[i] = ColDecimal
		case intCols[n]:
			s.Types[i] = ColInt
		default:
			s.Types[i] = ColText
		}
	}
	return s
}

func sprintTag(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}
