// Package pageglot implements the page-content translation core of an
// on-device page translator: fragment discovery over parsed HTML, a
// translation gateway with a same-language short-circuit, a sequential
// sweep session, a selection icon/popup controller, and a cross-context
// status broker.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/pageglot/pageglot"
//	    "github.com/pageglot/pageglot/engine"
//	)
//
//	func main() {
//	    factory := engine.NewOpenAIFactory(engine.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    gw := pageglot.NewGateway(factory,
//	        pageglot.WithDetectorFactory(engine.NewLinguaDetectorFactory()),
//	    )
//
//	    doc, _ := goquery.NewDocumentFromReader(strings.NewReader(page))
//	    session := pageglot.NewSession(doc, gw)
//
//	    result, err := session.StartFullSweep(context.Background(), pageglot.LanguagePreference{
//	        SourceLanguage: pageglot.AutoDetect,
//	        TargetLanguage: "es",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("translated %d fragments\n", result.Translated)
//	}
package pageglot
